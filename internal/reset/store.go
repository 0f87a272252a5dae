// Package reset holds the password-recovery state machine behind Redis.
// Each username owns an independent pair of keys: a pending one-time code
// and an "armed" reset-session flag. Keying the state per user means two
// recovery flows can never interfere with each other, and Redis TTLs give
// both the code and the armed window an explicit expiry.
package reset

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no pending code (or no armed session)
	// exists for the user, either because none was generated or because
	// the TTL ran out.
	ErrNotFound = errors.New("reset state not found")
	// ErrCodeMismatch is returned when the submitted code does not equal the
	// pending one. The pending code is left in place; a mismatch does not
	// consume it.
	ErrCodeMismatch = errors.New("otp code mismatch")
	// ErrUnavailable wraps Redis transport failures.
	ErrUnavailable = errors.New("reset store unavailable")
)

// Store implements the Idle -> Pending -> Armed -> Idle cycle on Redis.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Usernames compare case-insensitively everywhere else, so the keys
// normalize case too.
func codeKey(username string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(username))
}

func armedKey(username string) string {
	return "reset:" + strings.ToLower(strings.TrimSpace(username))
}

// SaveCode stores a freshly generated code for the user with the given TTL,
// entering the Pending state. Any previous code is overwritten and any armed
// session is revoked: generating a new code always restarts the flow.
func (s *Store) SaveCode(ctx context.Context, username, code string, ttl time.Duration) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, codeKey(username), code, ttl)
		pipe.Del(ctx, armedKey(username))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// VerifyCode compares the submitted code against the pending one and, on a
// match, atomically consumes the code and arms the reset session for armTTL.
// The comparison is numeric so leading zeros do not matter ("007" == "7").
// On a mismatch the pending code survives untouched and ErrCodeMismatch is
// returned; when no code is pending ErrNotFound is returned. The
// Pending -> Armed transition runs under WATCH so concurrent verifies for the
// same user cannot both succeed.
func (s *Store) VerifyCode(ctx context.Context, username, submitted string, armTTL time.Duration) error {
	const maxRetries = 4
	key := codeKey(username)

	for i := 0; i < maxRetries; i++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			stored, err := tx.Get(ctx, key).Result()
			if err != nil {
				return err
			}
			if !sameCode(stored, submitted) {
				return ErrCodeMismatch
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.Set(ctx, armedKey(username), "1", armTTL)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue // lost the race, re-read and retry
		}
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.Nil):
			return ErrNotFound
		case errors.Is(err, ErrCodeMismatch):
			return ErrCodeMismatch
		default:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return ErrNotFound
}

// Armed reports whether a reset session is currently armed for the user.
// This is a plain read; it does not consume the flag.
func (s *Store) Armed(ctx context.Context, username string) (bool, error) {
	n, err := s.rdb.Exists(ctx, armedKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// Consume atomically takes the armed flag down and reports whether it was
// set. Exactly one caller can observe true per armed session, which is what
// limits an armed window to a single password mutation.
func (s *Store) Consume(ctx context.Context, username string) (bool, error) {
	err := s.rdb.GetDel(ctx, armedKey(username)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return true, nil
}

// sameCode compares two codes numerically so that string representations
// with different leading zeros are equivalent. Non-numeric input never
// matches.
func sameCode(stored, submitted string) bool {
	a, err := strconv.ParseUint(strings.TrimSpace(stored), 10, 64)
	if err != nil {
		return false
	}
	b, err := strconv.ParseUint(strings.TrimSpace(submitted), 10, 64)
	if err != nil {
		return false
	}
	return a == b
}
