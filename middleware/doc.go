// Package middleware exposes HTTP middleware that turns bearer proof tokens
// into context signers for the attendance engine.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into context state. It does NOT
// make authorization decisions — the engine's Authorizer does, by inspecting
// the signers this middleware attaches.
package middleware
