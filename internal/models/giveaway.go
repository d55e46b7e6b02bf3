package models

import (
	"strings"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GiveawayStatus is the lifecycle state of a giveaway.
type GiveawayStatus string

const (
	GiveawayStatusDraft     GiveawayStatus = "draft"
	GiveawayStatusActive    GiveawayStatus = "active"
	GiveawayStatusCompleted GiveawayStatus = "completed"
	GiveawayStatusCancelled GiveawayStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s GiveawayStatus) Valid() bool {
	switch s {
	case GiveawayStatusDraft, GiveawayStatusActive, GiveawayStatusCompleted, GiveawayStatusCancelled:
		return true
	}
	return false
}

// EligibilityCriteria describes which purchase activity qualifies a member for a draw.
type EligibilityCriteria struct {
	MinPurchases      int                  `bson:"minPurchases" json:"minPurchases"`
	MinAmountSpent    float64              `bson:"minAmountSpent" json:"minAmountSpent"`
	PurchaseStartDate *time.Time           `bson:"purchaseStartDate,omitempty" json:"purchaseStartDate,omitempty"`
	PurchaseEndDate   *time.Time           `bson:"purchaseEndDate,omitempty" json:"purchaseEndDate,omitempty"`
	EligibleProducts  []primitive.ObjectID `bson:"eligibleProducts,omitempty" json:"eligibleProducts,omitempty"`
}

// EffectiveMinPurchases is the purchase count threshold actually applied. Candidates
// are drawn from users with at least one matching purchase, so 0 and 1 behave alike.
func (c EligibilityCriteria) EffectiveMinPurchases() int {
	if c.MinPurchases < 1 {
		return 1
	}
	return c.MinPurchases
}

// Giveaway is a promotional campaign with ordered prize tiers.
type Giveaway struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Title               string              `bson:"title" json:"title"`
	Description         string              `bson:"description" json:"description"`
	Image               string              `bson:"image,omitempty" json:"image,omitempty"`
	Prizes              []Prize             `bson:"prizes" json:"prizes"`
	EligibilityCriteria EligibilityCriteria `bson:"eligibilityCriteria" json:"eligibilityCriteria"`
	Status              GiveawayStatus      `bson:"status" json:"status"`
	StartDate           time.Time           `bson:"startDate" json:"startDate"`
	EndDate             time.Time           `bson:"endDate" json:"endDate"`
	DrawDate            time.Time           `bson:"drawDate" json:"drawDate"`
	DrawCompleted       bool                `bson:"drawCompleted" json:"drawCompleted"`
	DrawCompletedAt     *time.Time          `bson:"drawCompletedAt,omitempty" json:"drawCompletedAt,omitempty"`
	CreatedBy           string              `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the structural invariants of a giveaway definition.
func (g *Giveaway) Validate() error {
	const op = "validate giveaway"
	if strings.TrimSpace(g.Title) == "" {
		return apperror.Validation(op, "title is required")
	}
	if strings.TrimSpace(g.Description) == "" {
		return apperror.Validation(op, "description is required")
	}
	if g.Status != "" && !g.Status.Valid() {
		return apperror.Validation(op, "unknown status %q", g.Status)
	}
	if g.StartDate.IsZero() || g.EndDate.IsZero() || g.DrawDate.IsZero() {
		return apperror.Validation(op, "startDate, endDate and drawDate are required")
	}
	if !g.StartDate.Before(g.EndDate) {
		return apperror.Validation(op, "startDate must be before endDate")
	}
	if g.DrawDate.Before(g.EndDate) {
		return apperror.Validation(op, "drawDate must not be before endDate")
	}
	if len(g.Prizes) == 0 {
		return apperror.Validation(op, "at least one prize is required")
	}
	seen := make(map[string]struct{}, len(g.Prizes))
	for i, p := range g.Prizes {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return apperror.Validation(op, "prize %d: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return apperror.Validation(op, "prize name %q is used more than once", name)
		}
		seen[name] = struct{}{}
		if p.Quantity < 1 {
			return apperror.Validation(op, "prize %q: quantity must be at least 1", name)
		}
		if p.Value < 0 {
			return apperror.Validation(op, "prize %q: value must not be negative", name)
		}
	}
	c := g.EligibilityCriteria
	if c.MinPurchases < 0 {
		return apperror.Validation(op, "minPurchases must not be negative")
	}
	if c.MinAmountSpent < 0 {
		return apperror.Validation(op, "minAmountSpent must not be negative")
	}
	if c.PurchaseStartDate != nil && c.PurchaseEndDate != nil && !c.PurchaseStartDate.Before(*c.PurchaseEndDate) {
		return apperror.Validation(op, "purchaseStartDate must be before purchaseEndDate")
	}
	return nil
}

// PrizeByName returns the prize tier with the given name.
func (g *Giveaway) PrizeByName(name string) (Prize, int, bool) {
	for i, p := range g.Prizes {
		if p.Name == name {
			return p, i, true
		}
	}
	return Prize{}, -1, false
}

// GiveawayListFilter selects giveaways for the admin listing.
type GiveawayListFilter struct {
	Status GiveawayStatus
	Page   int
	Limit  int
}

// GiveawayPage is one page of giveaways.
type GiveawayPage struct {
	Giveaways []*Giveaway `json:"giveaways"`
	Total     int64       `json:"total"`
	Page      int         `json:"page"`
	Pages     int         `json:"pages"`
}
