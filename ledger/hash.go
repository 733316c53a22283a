package ledger

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// HashSize is the exact byte length of a session hash. Shorter or longer
// values are rejected outright; there is no prefix matching anywhere.
const HashSize = 32

// Hash is the opaque 32-byte token identifying an open attendance session.
// It is distributed out-of-band by the admin and treated as a shared secret.
type Hash [HashSize]byte

// ErrInvalidHashEncoding is returned by [ParseHash] and [HashFromBytes]
// when the input does not decode to exactly 32 bytes.
var ErrInvalidHashEncoding = errors.New("invalid session hash encoding")

// NewHash returns a cryptographically random session hash.
func NewHash() (Hash, error) {
	var h Hash
	_, err := rand.Read(h[:])
	return h, err
}

// ParseHash decodes a 64-character hex string into a [Hash].
func ParseHash(s string) (Hash, error) {
	var h Hash

	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, ErrInvalidHashEncoding
	}
	if len(raw) != HashSize {
		return h, ErrInvalidHashEncoding
	}

	copy(h[:], raw)
	return h, nil
}

// HashFromBytes copies a raw 32-byte slice into a [Hash].
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, ErrInvalidHashEncoding
	}
	copy(h[:], b)
	return h, nil
}

// String returns the lowercase hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Equal compares two hashes in constant time.
func (h Hash) Equal(other Hash) bool {
	return subtle.ConstantTimeCompare(h[:], other[:]) == 1
}
