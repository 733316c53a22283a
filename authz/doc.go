// Package authz issues and verifies short-lived JWT authorization proofs
// binding a caller to an address.
package authz
