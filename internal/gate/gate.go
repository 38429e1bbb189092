// Package gate is the authentication and authorization barrier in front of
// the privileged host actions.
//
// Authentication verifies a signed challenge header; authorization matches
// the authenticated credential's permit patterns against the requested
// action name. Both collapse every failure to a plain boolean at the public
// boundary so callers cannot distinguish a bad key from a bad signature;
// the specific reason is only visible in the diagnostic log.
//
// Known gap, kept on purpose: the nonce is validated for shape only. There
// is no store of previously seen nonces, so an exact replay inside the
// timestamp window is not prevented here. Hardening that would break parity
// with existing clients of the wire format.
package gate

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xenking/hostbridge/internal/credstore"
)

const (
	// AuthHeader is the request header carrying the signed challenge, a
	// colon-delimited 4-tuple "apikey:timestamp:nonce:hash".
	AuthHeader = "Hostbridge-Auth"

	// TimestampFormat is the wire format of the challenge timestamp,
	// interpreted as UTC. It is colon-free on purpose: the challenge value
	// itself is colon-delimited.
	TimestampFormat = "20060102Z150405"

	// DefaultClockSkew bounds how far a challenge timestamp may drift from
	// the server clock in either direction.
	DefaultClockSkew = 60 * time.Second

	keyPrefix    = "PFFA"
	apikeyMinLen = 12
	apikeyMaxLen = 40
	secretMinLen = 40
	secretMaxLen = 128
	nonceMinLen  = 8
	nonceMaxLen  = 40
)

// denyReason tags the specific cause of a rejection. It never crosses the
// public API; Authenticate and Authorize return plain booleans.
type denyReason string

const (
	denyNone              denyReason = ""
	denyHeaderMissing     denyReason = "header_missing"
	denyHeaderMalformed   denyReason = "header_malformed"
	denyStoreUnavailable  denyReason = "store_unavailable"
	denyUnknownKey        denyReason = "unknown_api_key"
	denyDemoCredential    denyReason = "demo_credential"
	denyClockSkew         denyReason = "clock_skew"
	denyNonceBounds       denyReason = "nonce_bounds"
	denyKeyFormat         denyReason = "key_format"
	denySecretLength      denyReason = "secret_length"
	denySignatureMismatch denyReason = "signature_mismatch"
	denyUnboundIdentity   denyReason = "unbound_identity"
	denyNotPermitted      denyReason = "not_permitted"
)

// CredentialSource resolves an API key to a stored credential. The store is
// expected to re-read its backing data on every call; the gate adds no
// caching of its own.
type CredentialSource interface {
	Load(apikey string) (*credstore.Credential, error)
}

// Gate holds the pieces shared by every request: the credential source, the
// allowed clock skew, and the per-call identity bindings. One Gate serves
// all requests of a server; the bindings map is the only cross-request
// state, and entries are keyed by the per-request call identifier so
// concurrent requests never observe each other.
type Gate struct {
	creds CredentialSource
	skew  time.Duration
	now   func() time.Time
	lg    *zap.Logger

	mu       sync.Mutex
	bindings map[string]*credstore.Credential
}

// New creates a Gate. A non-positive skew falls back to DefaultClockSkew.
func New(creds CredentialSource, skew time.Duration, lg *zap.Logger) *Gate {
	if skew <= 0 {
		skew = DefaultClockSkew
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Gate{
		creds:    creds,
		skew:     skew,
		now:      time.Now,
		lg:       lg,
		bindings: make(map[string]*credstore.Credential),
	}
}
