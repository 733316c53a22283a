// Package attendance provides an authorization-gated attendance ledger:
// a single admin opens sessions by publishing a 32-byte session hash, users
// prove attendance by submitting that hash, and lightweight profiles ride
// alongside. All state lives in Redis with per-entity TTLs (30 days for
// admin, session, and presence records, 90 days for profiles).
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// attendance is the public surface. It exposes [Engine], [Builder],
// [Config], and value types. Storage layout and the profile codec live in
// the ledger subpackage; proof-token verification lives in authz.
//
// # Authorization model
//
// The engine never verifies identity itself. Each gated operation asks an
// [Authorizer] whether the current invocation carries proof of control over
// a specific address. The default [ContextAuthorizer] trusts addresses
// attached via [WithSigner]; the authz package supplies a token-backed
// verifier for HTTP deployments. The session hash is a shared secret, not a
// credential: the scheme is only as strong as the channel the admin uses to
// distribute the hash.
//
// # Write discipline
//
// Mutating operations perform no write before every validation for the call
// has passed, so a returned error implies no state change. Query operations
// never fail on missing data; absence is a normal negative result.
package attendance
