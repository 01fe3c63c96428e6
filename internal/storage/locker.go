package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FlatLocker serializes every mutation of one flat's complaint set.
// Lock blocks until the flat is free or ctx is done; the returned func releases it.
type FlatLocker interface {
	Lock(ctx context.Context, flatID uint) (unlock func(), err error)
}

// LocalLocker is an in-process FlatLocker, one single-slot channel per flat.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uint]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[uint]chan struct{})}
}

func (l *LocalLocker) Lock(ctx context.Context, flatID uint) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[flatID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[flatID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock flat %d: %w", flatID, ctx.Err())
	}
}

// releaseScript deletes the lock key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrLockLost is returned by RedisLocker when the key expired before release.
var ErrLockLost = errors.New("flat lock expired before release")

// RedisLocker is a FlatLocker shared by every replica that talks to the same Redis.
type RedisLocker struct {
	Redis *redis.Client
	// TTL bounds how long a crashed holder can block the flat.
	TTL time.Duration
	// RetryInterval is the polling period while the flat is held elsewhere.
	RetryInterval time.Duration
	// OnRelease, if set, receives release failures.
	OnRelease func(flatID uint, err error)
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{
		Redis:         rdb,
		TTL:           10 * time.Second,
		RetryInterval: 25 * time.Millisecond,
	}
}

func flatLockKey(flatID uint) string {
	return fmt.Sprintf("flat:%d:lock", flatID)
}

func (l *RedisLocker) Lock(ctx context.Context, flatID uint) (func(), error) {
	key := flatLockKey(flatID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.Redis.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("lock flat %d: %w", flatID, err)
		}
		if ok {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("lock flat %d: %w", flatID, ctx.Err())
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// ctx may already be cancelled; release must still reach Redis
			released, err := releaseScript.Run(context.Background(), l.Redis, []string{key}, token).Int()
			if err == nil && released == 0 {
				err = ErrLockLost
			}
			if err != nil && l.OnRelease != nil {
				l.OnRelease(flatID, err)
			}
		})
	}, nil
}
