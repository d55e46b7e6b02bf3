package services

import (
	"context"
	"sync"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Locker provides mutual exclusion per key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func giveawayLockKey(id primitive.ObjectID) string {
	return "giveaway:" + id.Hex()
}

// lockGiveaway takes the per-giveaway lock that serialises every mutation of its
// winner set.
func lockGiveaway(ctx context.Context, locker Locker, op string, id primitive.ObjectID) (func(), error) {
	unlock, err := locker.Lock(ctx, giveawayLockKey(id))
	if err != nil {
		if apperror.KindOf(err) != "" {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindStateConflict, op, "giveaway is busy, try again", err)
	}
	return unlock, nil
}

// KeyedMutex is an in-process Locker for single-instance deployments and tests.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{sem: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		m.unref(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			m.unref(key, l)
		})
	}, nil
}

func (m *KeyedMutex) unref(key string, l *keyedLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}
