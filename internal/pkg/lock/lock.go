package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/openride/dispatch/internal/pkg/database"
	"github.com/openride/dispatch/internal/pkg/logger"
)

// Default acquisition policy. The lock protects a single assignment
// decision, not a trip lifecycle, so the TTL is deliberately short.
const (
	DefaultTTL        = 30 * time.Second
	DefaultRetries    = 1
	DefaultRetryDelay = 200 * time.Millisecond
)

var (
	// ErrNotAcquired is returned when the retry budget is exhausted
	ErrNotAcquired = errors.New("lock: not acquired")
	// ErrLockNotFound is returned by TTLRemaining for an absent key
	ErrLockNotFound = errors.New("lock: not found")
	// ErrLockNoExpiry is returned by TTLRemaining for a key without TTL
	ErrLockNoExpiry = errors.New("lock: no expiry")
)

// Release is conditional on the holder token so an expired holder cannot
// delete a lock since re-acquired by someone else.
const releaseScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`

// Options control a single acquisition attempt sequence
type Options struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// Lock is an acquired lock handle
type Lock struct {
	Key   string
	Token string
}

// Manager implements a distributed mutual-exclusion primitive over the
// shared store's atomic conditional-set with expiry.
type Manager struct {
	redisClient *database.RedisClient
}

// NewManager creates a lock manager
func NewManager(redisClient *database.RedisClient) *Manager {
	return &Manager{redisClient: redisClient}
}

// Acquire attempts a set-if-absent with expiry, retrying with a fixed
// delay until the budget runs out. Returns ErrNotAcquired on contention.
func (m *Manager) Acquire(ctx context.Context, key string, opts Options) (*Lock, error) {
	opts = opts.withDefaults()
	token := xid.New().String()

	for attempt := 0; attempt < opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(opts.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		ok, err := m.redisClient.SetNX(ctx, key, token, opts.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return &Lock{Key: key, Token: token}, nil
		}
	}

	return nil, ErrNotAcquired
}

// Release deletes the lock if this handle still holds it.
// Returns whether the lock was released.
func (m *Manager) Release(ctx context.Context, l *Lock) (bool, error) {
	if l == nil {
		return false, nil
	}
	res, err := m.redisClient.Eval(ctx, releaseScript, []string{l.Key}, l.Token)
	if err != nil {
		return false, fmt.Errorf("failed to release lock %s: %w", l.Key, err)
	}
	n, _ := res.(int64)
	return n > 0, nil
}

// TTLRemaining returns how long the lock has left to live.
// The client passes the PTTL reply sentinels (-2 missing key, -1 no
// expiry) through unscaled, so they arrive as raw -2/-1 durations.
func (m *Manager) TTLRemaining(ctx context.Context, key string) (time.Duration, error) {
	d, err := m.redisClient.PTTL(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read lock ttl %s: %w", key, err)
	}
	switch d {
	case time.Duration(-2):
		return 0, ErrLockNotFound
	case time.Duration(-1):
		return 0, ErrLockNoExpiry
	}
	return d, nil
}

// WithLock acquires the lock, runs the operation and releases on every
// exit path, surfacing the operation's error unchanged. If the lock
// cannot be obtained the operation is never invoked.
func (m *Manager) WithLock(ctx context.Context, key string, opts Options, operation func(ctx context.Context) error) error {
	l, err := m.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer func() {
		if _, relErr := m.Release(context.WithoutCancel(ctx), l); relErr != nil {
			// The TTL self-heals an unreleased lock.
			logger.Warn("Failed to release lock",
				logger.String("key", key),
				logger.Err(relErr))
		}
	}()

	return operation(ctx)
}
