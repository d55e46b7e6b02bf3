package mongodb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func startMongoForTest(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping test because docker/testcontainers is unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		t.Fatalf("container mapped port: %v", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	deadline := time.Now().Add(30 * time.Second)
	for {
		if err = client.Ping(ctx, nil); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("mongo not ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	db := client.Database("giveaways_test")
	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}
	return db
}

func TestMongoRepositories(t *testing.T) {
	db := startMongoForTest(t)
	ctx := context.Background()

	giveaways := NewGiveawayRepository(db)
	winners := NewWinnerRepository(db)
	purchases := NewPurchaseRepository(db)
	now := time.Now().UTC().Truncate(time.Millisecond)

	g := &models.Giveaway{
		Title:       "Integration",
		Description: "Integration giveaway",
		Prizes:      []models.Prize{{Name: "A", Quantity: 2}},
		Status:      models.GiveawayStatusActive,
		StartDate:   now.Add(-48 * time.Hour),
		EndDate:     now.Add(-time.Hour),
		DrawDate:    now.Add(-time.Minute),
	}
	if err := giveaways.Create(ctx, g); err != nil {
		t.Fatalf("Create giveaway: %v", err)
	}

	t.Run("not found is typed", func(t *testing.T) {
		_, err := giveaways.FindByID(ctx, primitive.NewObjectID())
		if apperror.KindOf(err) != apperror.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("status compare and set", func(t *testing.T) {
		due, err := giveaways.FindDueForCompletion(ctx, now)
		if err != nil || len(due) != 1 {
			t.Fatalf("FindDueForCompletion = %d, %v", len(due), err)
		}
		ok, err := giveaways.CompareAndSetStatus(ctx, g.ID, models.GiveawayStatusDraft, models.GiveawayStatusCompleted, now)
		if err != nil || ok {
			t.Fatalf("CAS from wrong status = %v, %v", ok, err)
		}
		ok, err = giveaways.CompareAndSetStatus(ctx, g.ID, models.GiveawayStatusActive, models.GiveawayStatusCompleted, now)
		if err != nil || !ok {
			t.Fatalf("CAS = %v, %v", ok, err)
		}
	})

	t.Run("claim draw once", func(t *testing.T) {
		var wg sync.WaitGroup
		claims := make([]bool, 5)
		for i := range claims {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ok, err := giveaways.ClaimDraw(ctx, g.ID, now)
				if err != nil {
					t.Error(err)
				}
				claims[i] = ok
			}(i)
		}
		wg.Wait()
		won := 0
		for _, ok := range claims {
			if ok {
				won++
			}
		}
		if won != 1 {
			t.Fatalf("%d claims succeeded, want 1", won)
		}
		stored, _ := giveaways.FindByID(ctx, g.ID)
		if !stored.DrawCompleted || stored.DrawCompletedAt == nil {
			t.Fatalf("stored = %+v", stored)
		}
	})

	t.Run("one win per user", func(t *testing.T) {
		userID := primitive.NewObjectID()
		first := &models.Winner{GiveawayID: g.ID, UserID: userID, PrizeWon: models.PrizeSnapshot{Name: "A"}, WonAt: now}
		if err := winners.Create(ctx, first); err != nil {
			t.Fatalf("Create winner: %v", err)
		}
		second := &models.Winner{GiveawayID: g.ID, UserID: userID, PrizeWon: models.PrizeSnapshot{Name: "A"}, WonAt: now}
		if err := winners.Create(ctx, second); apperror.KindOf(err) != apperror.KindStateConflict {
			t.Fatalf("duplicate winner: got %v", err)
		}
		n, err := winners.CountByPrize(ctx, g.ID, "A")
		if err != nil || n != 1 {
			t.Fatalf("CountByPrize = %d, %v", n, err)
		}
		ids, err := winners.UserIDsByGiveaway(ctx, g.ID)
		if err != nil || len(ids) != 1 || ids[0] != userID {
			t.Fatalf("UserIDsByGiveaway = %v, %v", ids, err)
		}
	})

	t.Run("purchase window is inclusive", func(t *testing.T) {
		userID, product := primitive.NewObjectID(), primitive.NewObjectID()
		edge := now.Add(-24 * time.Hour)
		for _, p := range []*models.Purchase{
			{UserID: userID, ProductID: product, Amount: 10, UserPayment: models.PaymentStatusPayed, PaymentApproval: models.ApprovalStatusCompleted, CreatedAt: edge},
			{UserID: userID, ProductID: product, Amount: 10, UserPayment: models.PaymentStatusPayed, PaymentApproval: models.ApprovalStatusPending, CreatedAt: edge},
			{UserID: userID, ProductID: primitive.NewObjectID(), Amount: 10, UserPayment: models.PaymentStatusPayed, PaymentApproval: models.ApprovalStatusCompleted, CreatedAt: edge},
		} {
			if err := purchases.Create(ctx, p); err != nil {
				t.Fatalf("Create purchase: %v", err)
			}
		}
		got, err := purchases.Query(ctx, models.PurchaseFilter{
			ApprovedOnly: true,
			From:         &edge,
			To:           &edge,
			ProductIDs:   []primitive.ObjectID{product},
		})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("matched %d purchases, want 1", len(got))
		}
	})
}

func TestMongoLocker(t *testing.T) {
	db := startMongoForTest(t)
	ctx := context.Background()
	locker := NewLocker(db, time.Minute)

	unlock, err := locker.Lock(ctx, "giveaway:one")
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(waitCtx, "giveaway:one"); err == nil {
		t.Fatal("a held lease must not be granted twice")
	}

	other, err := locker.Lock(ctx, "giveaway:two")
	if err != nil {
		t.Fatalf("independent key: %v", err)
	}
	other()

	unlock()
	again, err := locker.Lock(ctx, "giveaway:one")
	if err != nil {
		t.Fatalf("Lock() after release: %v", err)
	}
	again()

	t.Run("held lease is extended", func(t *testing.T) {
		short := NewLocker(db, 300*time.Millisecond)
		release, err := short.Lock(ctx, "giveaway:long")
		if err != nil {
			t.Fatal(err)
		}
		defer release()
		time.Sleep(time.Second)

		waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
		if _, err := short.Lock(waitCtx, "giveaway:long"); err == nil {
			t.Fatal("lease held past its ttl was taken over")
		}
	})

	t.Run("stale lease is taken over", func(t *testing.T) {
		_, err := db.Collection("giveaway_locks").InsertOne(ctx, bson.M{
			"_id":       "giveaway:stale",
			"owner":     "crashed-holder",
			"expiresAt": time.Now().UTC().Add(-time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
		takeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		takeover, err := locker.Lock(takeCtx, "giveaway:stale")
		if err != nil {
			t.Fatalf("expired lease was not taken over: %v", err)
		}
		takeover()
	})
}
