package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis transport or command failure so
// callers can distinguish backend outages from domain conditions.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrHashCorrupt is returned when the stored active hash is not exactly
// 32 bytes. This only happens when the keyspace has been tampered with.
var ErrHashCorrupt = errors.New("stored session hash corrupt")

const defaultPrefix = "att"

// TTLPolicy tags each entity kind with its storage lifetime. The store
// re-applies the relevant duration after every write and read-refresh, so
// TTL handling never leaks into operation logic.
type TTLPolicy struct {
	Admin    time.Duration
	Session  time.Duration
	Presence time.Duration
	Profile  time.Duration
}

// DefaultTTLPolicy returns the production lifetimes: 30 days for admin,
// session hash, and presence records, 90 days for profiles.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Admin:    30 * 24 * time.Hour,
		Session:  30 * 24 * time.Hour,
		Presence: 30 * 24 * time.Hour,
		Profile:  90 * 24 * time.Hour,
	}
}

// Validate rejects non-positive lifetimes.
func (p TTLPolicy) Validate() error {
	if p.Admin <= 0 || p.Session <= 0 || p.Presence <= 0 || p.Profile <= 0 {
		return errors.New("all TTL durations must be positive")
	}
	return nil
}

// Store is the Redis-backed attendance ledger. All state lives under a
// single key prefix; absence of a record is reported as [redis.Nil].
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    TTLPolicy
}

// NewStore creates a [Store] on the given Redis client. prefix sets the key
// namespace ("att" when empty); ttl controls per-entity lifetimes.
func NewStore(rdb redis.UniversalClient, prefix string, ttl TTLPolicy) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		redis:  rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) adminKey() string {
	return s.prefix + ":adm"
}

func (s *Store) hashKey() string {
	return s.prefix + ":cur"
}

func (s *Store) presenceKey(hash Hash, user string) string {
	return s.prefix + ":pr:" + hash.String() + ":" + user
}

func (s *Store) profileKey(user string) string {
	return s.prefix + ":pf:" + user
}

// SetAdminNX stores the admin address only when none exists yet. Returns
// false without error when an admin is already set.
//
//	Performance: 1 Redis SETNX.
func (s *Store) SetAdminNX(ctx context.Context, admin string) (bool, error) {
	ok, err := s.redis.SetNX(ctx, s.adminKey(), admin, s.ttl.Admin).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ok, nil
}

// SetAdmin overwrites the admin address unconditionally and refreshes its
// TTL. Used for admin transfer; first-time initialization goes through
// [Store.SetAdminNX].
func (s *Store) SetAdmin(ctx context.Context, admin string) error {
	if err := s.redis.Set(ctx, s.adminKey(), admin, s.ttl.Admin).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Admin returns the stored admin address, refreshing its TTL. Returns
// [redis.Nil] when no admin has been set or the record expired.
//
//	Performance: 1 Redis GETEX.
func (s *Store) Admin(ctx context.Context) (string, error) {
	admin, err := s.redis.GetEx(ctx, s.adminKey(), s.ttl.Admin).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return admin, nil
}

// SetActiveHash overwrites the active session hash and refreshes its TTL.
// No uniqueness check is performed against prior hashes; rotation silently
// orphans presence records keyed by the previous hash.
func (s *Store) SetActiveHash(ctx context.Context, hash Hash) error {
	if err := s.redis.Set(ctx, s.hashKey(), hash[:], s.ttl.Session).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// ActiveHash returns the current session hash, refreshing its TTL. Returns
// [redis.Nil] when no session is open.
//
//	Performance: 1 Redis GETEX.
func (s *Store) ActiveHash(ctx context.Context) (Hash, error) {
	var hash Hash

	data, err := s.redis.GetEx(ctx, s.hashKey(), s.ttl.Session).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return hash, err
		}
		return hash, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(data) != HashSize {
		return hash, ErrHashCorrupt
	}

	copy(hash[:], data)
	return hash, nil
}

// SetPresence records that user proved knowledge of the given session hash.
// Overwriting an existing record is a harmless no-op that refreshes the TTL,
// which makes re-registration idempotent by construction.
func (s *Store) SetPresence(ctx context.Context, hash Hash, user string) error {
	if err := s.redis.Set(ctx, s.presenceKey(hash, user), "1", s.ttl.Presence).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// HasPresence reports whether a presence record exists for (hash, user).
// A hit refreshes the record's TTL; a miss is a normal negative result.
//
//	Performance: 1 Redis EXISTS, +1 EXPIRE on hit.
func (s *Store) HasPresence(ctx context.Context, hash Hash, user string) (bool, error) {
	key := s.presenceKey(hash, user)

	n, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if n == 0 {
		return false, nil
	}

	if err := s.redis.Expire(ctx, key, s.ttl.Presence).Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return true, nil
}

// HasPresenceBatch checks presence for an ordered slice of users under one
// session hash, returning a same-length, same-order slice of booleans. No
// deduplication and no short-circuiting: cost is linear in input length.
//
//	Performance: 1 pipelined EXISTS per user, +1 pipelined EXPIRE per hit.
func (s *Store) HasPresenceBatch(ctx context.Context, hash Hash, users []string) ([]bool, error) {
	results := make([]bool, len(users))
	if len(users) == 0 {
		return results, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.IntCmd, len(users))
	for i, user := range users {
		cmds[i] = pipe.Exists(ctx, s.presenceKey(hash, user))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	refresh := s.redis.Pipeline()
	var hits int
	for i, cmd := range cmds {
		n, err := cmd.Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if n > 0 {
			results[i] = true
			refresh.Expire(ctx, s.presenceKey(hash, users[i]), s.ttl.Presence)
			hits++
		}
	}

	if hits > 0 {
		if _, err := refresh.Exec(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return results, nil
}

// SaveProfile creates or overwrites the user's profile and refreshes its
// 90-day TTL.
func (s *Store) SaveProfile(ctx context.Context, user string, profile *Profile) error {
	data, err := EncodeProfile(profile)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.profileKey(user), data, s.ttl.Profile).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Profile returns the user's profile, refreshing its TTL. Returns
// [redis.Nil] when no profile exists or the record expired.
//
//	Performance: 1 Redis GETEX.
func (s *Store) Profile(ctx context.Context, user string) (*Profile, error) {
	data, err := s.redis.GetEx(ctx, s.profileKey(user), s.ttl.Profile).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return DecodeProfile(data)
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
