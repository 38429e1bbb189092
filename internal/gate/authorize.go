package gate

import (
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
)

// Authorize reports whether the credential bound to callID may invoke the
// named action. A callID without a prior successful Authenticate always
// fails: authorization cannot bypass authentication.
//
// The permit field is an ordered comma-separated list of shell-glob
// patterns ('*' matches any run of characters, '?' exactly one) evaluated
// against the full action name. The first match wins; order carries no
// precedence beyond the short circuit.
func (g *Gate) Authorize(callID, action string) bool {
	return g.authorize(callID, action) == denyNone
}

func (g *Gate) authorize(callID, action string) denyReason {
	cred := g.lookup(callID)
	if cred == nil {
		g.lg.Warn("no established credential for this call",
			zap.String("call_id", callID),
			zap.String("action", action))
		return denyUnboundIdentity
	}

	for _, pat := range strings.Split(cred.Permit, ",") {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		m, err := glob.Compile(pat)
		if err != nil {
			g.lg.Warn("invalid permit pattern",
				zap.String("pattern", pat),
				zap.String("apikey", cred.APIKey))
			continue
		}
		if m.Match(action) {
			return denyNone
		}
	}

	g.lg.Warn("action not permitted",
		zap.String("action", action),
		zap.String("permit", cred.Permit),
		zap.String("apikey", cred.APIKey),
		zap.String("call_id", callID))
	return denyNotPermitted
}
