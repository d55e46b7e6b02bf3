package mongodb

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/exp/slog"
)

const (
	defaultLeaseTTL      = 2 * time.Minute
	defaultRetryInterval = 50 * time.Millisecond
	releaseTimeout       = 5 * time.Second
)

// Locker hands out exclusive leases stored as documents in giveaway_locks. A lease
// is taken by an upsert that only matches an expired document, so a live lease makes
// the upsert collide on _id. While held, a lease is extended every ttl/3; it expires
// after ttl only if the holder dies.
type Locker struct {
	collection    *mongo.Collection
	ttl           time.Duration
	retryInterval time.Duration
	now           func() time.Time
}

// NewLocker creates a lease locker. A non-positive ttl uses the default.
func NewLocker(db *mongo.Database, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &Locker{
		collection:    db.Collection("giveaway_locks"),
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Lock blocks until the lease for key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	owner := uuid.NewString()
	for {
		now := l.now()
		_, err := l.collection.UpdateOne(ctx,
			bson.M{"_id": key, "expiresAt": bson.M{"$lt": now}},
			bson.M{"$set": bson.M{"owner": owner, "acquiredAt": now, "expiresAt": now.Add(l.ttl)}},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return l.hold(key, owner), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, apperror.Dependency("acquire lock", "lock store unavailable", err)
		}

		timer := time.NewTimer(l.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// hold keeps the lease alive until the returned func is called, then deletes it.
func (l *Locker) hold(key, owner string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.renew(key, owner, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
				slog.Error("Failed to release lock lease", "key", key, "error", err)
			}
		})
	}
}

func (l *Locker) renew(key, owner string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		res, err := l.collection.UpdateOne(ctx,
			bson.M{"_id": key, "owner": owner},
			bson.M{"$set": bson.M{"expiresAt": l.now().Add(l.ttl)}},
		)
		cancel()
		if err != nil {
			slog.Warn("Failed to extend lock lease", "key", key, "error", err)
			continue
		}
		if res.MatchedCount == 0 {
			slog.Error("Lock lease lost before release", "key", key)
			return
		}
	}
}
