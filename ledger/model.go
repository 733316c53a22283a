package ledger

// Profile is the stored per-user profile record. RegisteredAt is the Unix
// timestamp of the most recent profile update, not the first registration.
type Profile struct {
	Nickname     string
	RegisteredAt int64
}
