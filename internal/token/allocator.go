package token

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrStoreUnavailable = errors.New("token store unavailable")
	ErrNoCodeAvailable  = errors.New("no distribution code available")
)

// errCollision signals that the drawn code is still held by a live
// distribution, so the caller must redraw.
var errCollision = errors.New("code already in use")

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 3

	usedCodesKey  = "used_tokens"
	codeKeyPrefix = "token:"

	// maxDrawAttempts bounds the redraw loop so pathological contention on
	// the 46,656-code keyspace cannot spin forever.
	maxDrawAttempts = 100
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{3}$`)

// Allocator issues short distribution codes backed by Redis. A code maps 1:1
// to a live distribution; entries carry a 7-day TTL and lapsed codes are
// recycled in place. All writes go through WATCH-guarded transactions, so two
// allocators racing for the same code produce exactly one winner.
type Allocator struct {
	client *redis.Client
	expiry time.Duration

	// draw is swapped out in tests to force collisions.
	draw func() string
}

func NewAllocator(client *redis.Client) *Allocator {
	return &Allocator{
		client: client,
		expiry: 7 * 24 * time.Hour,
		draw:   randomCode,
	}
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}

	return string(b)
}

// Issue draws random codes until one is claimed atomically, recycling codes
// whose store entry has lapsed. Store failures surface as ErrStoreUnavailable;
// exhausting the attempt budget surfaces as ErrNoCodeAvailable.
func (a *Allocator) Issue(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		code := a.draw()

		err := a.tryClaim(ctx, code)
		switch {
		case err == nil:
			return code, nil
		case errors.Is(err, errCollision), errors.Is(err, redis.TxFailedErr):
			// Live code or a concurrent writer beat us; redraw.
			continue
		default:
			return "", fmt.Errorf("%w -> %v", ErrStoreUnavailable, err)
		}
	}

	return "", ErrNoCodeAvailable
}

func (a *Allocator) tryClaim(ctx context.Context, code string) error {
	key := codeKeyPrefix + code

	return a.client.Watch(ctx, func(tx *redis.Tx) error {
		used, err := tx.SIsMember(ctx, usedCodesKey, code).Result()
		if err != nil {
			return err
		}

		if used {
			live, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if live > 0 {
				return errCollision
			}
			// Membership without a hash means the entry's TTL lapsed:
			// reactivate the code in place with a fresh expiry.
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SAdd(ctx, usedCodesKey, code)
			pipe.HSet(ctx, key,
				"created_at", time.Now().UTC().Format(time.RFC3339Nano),
				"status", "active",
			)
			pipe.Expire(ctx, key, a.expiry)
			pipe.Expire(ctx, usedCodesKey, a.expiry+time.Minute)
			return nil
		})

		return err
	}, usedCodesKey, key)
}

// IsActive reports whether code is well-formed, present in the store, and
// still inside its 7-day lifetime.
func (a *Allocator) IsActive(ctx context.Context, code string) (bool, error) {
	if !codePattern.MatchString(code) {
		return false, nil
	}

	data, err := a.client.HGetAll(ctx, codeKeyPrefix+code).Result()
	if err != nil {
		return false, fmt.Errorf("%w -> %v", ErrStoreUnavailable, err)
	}
	if len(data) == 0 {
		return false, nil
	}

	createdAt, err := time.Parse(time.RFC3339Nano, data["created_at"])
	if err != nil {
		return false, nil
	}
	if time.Since(createdAt) >= a.expiry {
		return false, nil
	}

	return data["status"] == "active", nil
}

// Release returns a code to the pool, e.g. when distribution creation fails
// after the code was issued.
func (a *Allocator) Release(ctx context.Context, code string) error {
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, usedCodesKey, code)
		pipe.Del(ctx, codeKeyPrefix+code)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w -> %v", ErrStoreUnavailable, err)
	}

	return nil
}

// ExpiresAt returns when the code lapses, or the zero time if it is unknown.
func (a *Allocator) ExpiresAt(ctx context.Context, code string) (time.Time, error) {
	data, err := a.client.HGetAll(ctx, codeKeyPrefix+code).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w -> %v", ErrStoreUnavailable, err)
	}
	if len(data) == 0 {
		return time.Time{}, nil
	}

	createdAt, err := time.Parse(time.RFC3339Nano, data["created_at"])
	if err != nil {
		return time.Time{}, nil
	}

	return createdAt.Add(a.expiry), nil
}
