package gate

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/hostbridge/internal/credstore"
)

// Authenticate verifies the signed challenge on r. On success the resolved
// credential is bound to callID and later consulted by Authorize. Every
// failure path returns false without detail; the cause is logged.
func (g *Gate) Authenticate(r *http.Request, callID string) bool {
	return g.authenticate(r, callID) == denyNone
}

// authenticate runs the verification chain, terminal on the first failing
// check. No partial credit: the credential is bound only after the full
// chain passes.
func (g *Gate) authenticate(r *http.Request, callID string) denyReason {
	raw := r.Header.Get(AuthHeader)
	if raw == "" {
		g.lg.Warn("missing auth header",
			zap.String("call_id", callID),
			zap.String("remote", r.RemoteAddr))
		return denyHeaderMissing
	}

	fields := strings.Split(sanitize(raw), ":")
	if len(fields) != 4 {
		g.lg.Warn("malformed auth header",
			zap.Int("fields", len(fields)),
			zap.String("call_id", callID))
		return denyHeaderMalformed
	}
	apikey, timestamp, nonce, hash := fields[0], fields[1], fields[2], fields[3]

	cred, err := g.creds.Load(apikey)
	if err != nil {
		// The loader has already logged the specifics.
		if errors.Is(err, credstore.ErrUnknownKey) {
			return denyUnknownKey
		}
		return denyStoreUnavailable
	}

	// A user may have renamed a demo section but kept its secret; deny both
	// the key and the secret value.
	if credstore.IsDemoKey(apikey) || credstore.IsDemoSecret(cred.Secret) {
		g.lg.Warn("demo credential in use",
			zap.String("apikey", apikey),
			zap.String("call_id", callID))
		return denyDemoCredential
	}

	callerTime, err := time.ParseInLocation(TimestampFormat, timestamp, time.UTC)
	if err != nil {
		g.lg.Warn("unparseable auth timestamp",
			zap.String("timestamp", timestamp),
			zap.String("call_id", callID))
		return denyClockSkew
	}
	now := g.now()
	if now.Before(callerTime.Add(-g.skew)) || now.After(callerTime.Add(g.skew)) {
		g.lg.Warn("auth timestamp outside window",
			zap.String("caller_time", callerTime.UTC().Format(TimestampFormat)),
			zap.String("server_time", now.UTC().Format(TimestampFormat)),
			zap.Duration("skew", g.skew),
			zap.String("call_id", callID))
		return denyClockSkew
	}

	if len(nonce) < nonceMinLen || len(nonce) > nonceMaxLen {
		g.lg.Warn("nonce length out of bounds",
			zap.Int("length", len(nonce)),
			zap.String("call_id", callID))
		return denyNonceBounds
	}

	if !strings.HasPrefix(apikey, keyPrefix) || len(apikey) < apikeyMinLen || len(apikey) > apikeyMaxLen {
		g.lg.Warn("api key format invalid",
			zap.String("apikey", apikey),
			zap.String("call_id", callID))
		return denyKeyFormat
	}

	// Defends against a misconfigured store entry, not attacker input.
	if len(cred.Secret) < secretMinLen || len(cred.Secret) > secretMaxLen {
		g.lg.Warn("stored secret length invalid",
			zap.String("apikey", apikey),
			zap.Int("length", len(cred.Secret)),
			zap.String("call_id", callID))
		return denySecretLength
	}

	want := signature(cred.Secret, timestamp, nonce)
	if subtle.ConstantTimeCompare([]byte(want), []byte(hash)) != 1 {
		g.lg.Warn("signature mismatch",
			zap.String("apikey", apikey),
			zap.String("call_id", callID))
		return denySignatureMismatch
	}

	g.bind(callID, cred)
	g.lg.Info("authenticated",
		zap.String("apikey", apikey),
		zap.String("call_id", callID),
		zap.String("remote", r.RemoteAddr))
	return denyNone
}

// signature computes the lower-case hex SHA-256 of secret‖timestamp‖nonce.
// The three inputs are concatenated raw, with no delimiter or length
// prefixing; existing clients sign exactly this byte sequence.
func signature(secret, timestamp, nonce string) string {
	sum := sha256.Sum256([]byte(secret + timestamp + nonce))
	return hex.EncodeToString(sum[:])
}

// sanitize strips every character outside [A-Za-z0-9:._-] from the header
// value. The colon survives as the field delimiter.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ':', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
