package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeGiveaways struct {
	services.GiveawayManager
	created *models.Giveaway
	actor   string
	status  models.GiveawayStatus
	filter  models.GiveawayListFilter
}

func (f *fakeGiveaways) CreateGiveaway(_ context.Context, g *models.Giveaway, actor string) (*models.Giveaway, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.ID = primitive.NewObjectID()
	f.created, f.actor = g, actor
	return g, nil
}

func (f *fakeGiveaways) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.GiveawayStatus, actor string) (*models.Giveaway, error) {
	if status != models.GiveawayStatusCompleted {
		return nil, apperror.Conflict("update giveaway status", "status of a drawn giveaway can only be completed")
	}
	f.status, f.actor = status, actor
	return &models.Giveaway{ID: id, Status: status}, nil
}

func (f *fakeGiveaways) ListGiveaways(_ context.Context, filter models.GiveawayListFilter) (*models.GiveawayPage, error) {
	f.filter = filter
	return &models.GiveawayPage{Giveaways: []*models.Giveaway{}, Page: filter.Page}, nil
}

func newGiveawayRouter(f *fakeGiveaways) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGiveawayHandler(f)
	r := gin.New()
	r.Use(withAdmin)
	r.POST("/giveaways", h.CreateGiveaway)
	r.GET("/giveaways", h.ListGiveaways)
	r.PATCH("/giveaways/:id/status", h.UpdateStatus)
	return r
}

func TestCreateGiveawayHandler(t *testing.T) {
	f := &fakeGiveaways{}
	r := newGiveawayRouter(f)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	rec := perform(t, r, http.MethodPost, "/giveaways", gin.H{
		"title":       "July Giveaway",
		"description": "Monthly prizes",
		"prizes":      []gin.H{{"name": "Phone", "quantity": 2, "value": 300}},
		"startDate":   start,
		"endDate":     start.Add(14 * 24 * time.Hour),
		"drawDate":    start.Add(15 * 24 * time.Hour),
		"eligibilityCriteria": gin.H{
			"minPurchases": 2,
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if f.actor != "admin-9" || f.created.EligibilityCriteria.MinPurchases != 2 || f.created.Prizes[0].Quantity != 2 {
		t.Fatalf("created = %+v by %q", f.created, f.actor)
	}

	rec = perform(t, r, http.MethodPost, "/giveaways", gin.H{"title": "No prizes"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid giveaway status = %d", rec.Code)
	}
}

func TestUpdateStatusHandler(t *testing.T) {
	f := &fakeGiveaways{}
	r := newGiveawayRouter(f)
	path := "/giveaways/" + primitive.NewObjectID().Hex() + "/status"

	if rec := perform(t, r, http.MethodPatch, path, gin.H{"status": "completed"}); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec := perform(t, r, http.MethodPatch, path, gin.H{"status": "active"}); rec.Code != http.StatusConflict {
		t.Fatalf("conflict status = %d", rec.Code)
	}
	if rec := perform(t, r, http.MethodPatch, path, gin.H{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing status = %d", rec.Code)
	}
}

func TestListGiveawaysHandlerParsesQuery(t *testing.T) {
	f := &fakeGiveaways{}
	r := newGiveawayRouter(f)

	if rec := perform(t, r, http.MethodGet, "/giveaways?status=active&page=3&limit=500", nil); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := models.GiveawayListFilter{Status: models.GiveawayStatusActive, Page: 3, Limit: 100}
	if f.filter != want {
		t.Fatalf("filter = %+v, want %+v", f.filter, want)
	}
}
