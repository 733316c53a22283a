package attendance

import (
	"context"

	"github.com/mzahmi/attendance/ledger"
)

// Hash is the 32-byte session hash type. See [ledger.Hash].
type Hash = ledger.Hash

// Profile is the stored per-user profile record. See [ledger.Profile].
type Profile = ledger.Profile

// NewSessionHash mints a cryptographically random session hash for an admin
// to distribute out-of-band.
func NewSessionHash() (Hash, error) {
	return ledger.NewHash()
}

// ParseHash decodes a 64-character hex string into a [Hash].
func ParseHash(s string) (Hash, error) {
	return ledger.ParseHash(s)
}

// Authorizer is the capability the host supplies to answer "does the current
// invocation carry proof of authorization for this address?". The engine
// calls it at the top of every gated operation and treats the answer as a
// plain boolean; identity verification is entirely the host's concern.
type Authorizer interface {
	AuthorizedAs(ctx context.Context, addr string) bool
}

// ContextAuthorizer authorizes addresses previously attached to the context
// via [WithSigner]. It is the default Authorizer and suits deployments where
// a trusted outer layer (middleware, RPC interceptor) has already verified
// the caller.
type ContextAuthorizer struct{}

// AuthorizedAs reports whether addr is among the context's signers.
func (ContextAuthorizer) AuthorizedAs(ctx context.Context, addr string) bool {
	if addr == "" {
		return false
	}
	for _, signer := range signersFromContext(ctx) {
		if signer == addr {
			return true
		}
	}
	return false
}
