package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Locker serialises ledger work on one product across concurrent requests.
// The returned release func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, productID uint) (release func(), err error)
}

// LocalLocker is a keyed mutex for a single process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uint]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[uint]*slot)}
}

func (l *LocalLocker) Lock(ctx context.Context, productID uint) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[productID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[productID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(productID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(productID, s)
		})
	}, nil
}

func (l *LocalLocker) unref(productID uint, s *slot) {
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, productID)
	}
	l.mu.Unlock()
}

// RedisLocker holds a redislock lease per product so several server
// instances sharing one database do not interleave adjustments.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

func NewRedisLocker(rdb redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(ttl/(50*time.Millisecond))),
	}
}

func (r *RedisLocker) Lock(ctx context.Context, productID uint) (func(), error) {
	key := fmt.Sprintf("lock:inventory:%d", productID)
	lock, err := r.client.Obtain(ctx, key, r.ttl, &redislock.Options{RetryStrategy: r.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("product %d is busy: %w", productID, err)
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// a fresh context: the request one may already be cancelled
		_ = lock.Release(context.Background())
	}, nil
}
