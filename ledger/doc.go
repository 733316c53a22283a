// Package ledger is the Redis-backed storage layer for the attendance
// engine. It owns the key layout, the per-entity TTL policy, and the
// binary profile codec.
//
// Four entity kinds are persisted, each under its own key namespace so a
// user address can never collide across kinds:
//
//	<prefix>:adm             admin address (singleton)
//	<prefix>:cur             active session hash (singleton)
//	<prefix>:pr:<hash>:<u>   presence flag for user u under a session hash
//	<prefix>:pf:<u>          user profile
//
// Every read of a singleton or profile refreshes its TTL (GETEX); presence
// reads refresh the TTL only on a hit. Absence is reported as [redis.Nil],
// never as a synthesized error — the engine decides whether a missing
// record is a failure.
package ledger
