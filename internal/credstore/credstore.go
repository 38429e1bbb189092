// Package credstore resolves API keys against the credentials file on disk.
//
// The file is a sectioned INI store: each section name is an API key, each
// section carries a "secret" value and an optional comma-separated "permit"
// pattern list. The store is re-read on every lookup so a credentials file
// edit takes effect on the next request; there is no cache to invalidate.
package credstore

import (
	"os"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// Loader errors. The gate collapses all of them to a uniform rejection at
// the API boundary; they stay distinct here for logging and tests.
var (
	ErrStoreUnavailable = errors.New("credential store unavailable")
	ErrStoreMalformed   = errors.New("credential store malformed")
	ErrUnknownKey       = errors.New("unknown api key")
)

// Credential is one entry of the credential store. It is loaded fresh for a
// single request and never mutated after load.
type Credential struct {
	// APIKey is the opaque public identifier (the section name).
	APIKey string
	// Secret is only ever used to recompute signatures. It must never be
	// logged or transmitted.
	Secret string
	// Permit is the raw comma-separated glob pattern list. Empty means
	// "allow nothing".
	Permit string
}

// Loader reads credentials from an INI file at a fixed path.
type Loader struct {
	path string
	lg   *zap.Logger
}

// NewLoader creates a Loader for the credentials file at path.
func NewLoader(path string, lg *zap.Logger) *Loader {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Loader{path: path, lg: lg}
}

// Load re-reads the store and resolves apikey to its credential.
//
// Sections named after the shipped demo credentials are excluded while
// parsing, so a demo key can never be selected even if present in the live
// file. Sections without a non-empty "secret" are likewise never candidates.
func (l *Loader) Load(apikey string) (*Credential, error) {
	l.lg.Debug("loading credential",
		zap.String("apikey", apikey),
		zap.String("path", l.path))

	fi, err := os.Stat(l.path)
	if err != nil || fi.IsDir() {
		l.lg.Warn("credential store unavailable",
			zap.String("apikey", apikey),
			zap.String("path", l.path),
			zap.Error(err))
		return nil, ErrStoreUnavailable
	}

	f, err := ini.Load(l.path)
	if err != nil {
		l.lg.Warn("credential store unparseable",
			zap.String("apikey", apikey),
			zap.String("path", l.path),
			zap.Error(err))
		return nil, errors.Wrap(ErrStoreMalformed, err.Error())
	}

	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection {
			continue
		}
		if IsDemoKey(name) {
			continue
		}
		secret := sec.Key("secret").String()
		if secret == "" {
			continue
		}
		if name == apikey {
			return &Credential{
				APIKey: name,
				Secret: secret,
				Permit: sec.Key("permit").String(),
			}, nil
		}
	}

	l.lg.Warn("api key not present in credential store",
		zap.String("apikey", apikey),
		zap.String("path", l.path))
	return nil, ErrUnknownKey
}
