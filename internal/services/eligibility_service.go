package services

import (
	"context"
	"sort"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/metrics"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// EligibilityService computes the set of members that satisfy a giveaway's criteria.
// Results are recomputed from the ledger on every call and never cached.
type EligibilityService struct {
	purchases PurchaseLedger
	users     UserDirectory
}

// NewEligibilityService creates a new EligibilityService
func NewEligibilityService(purchases PurchaseLedger, users UserDirectory) *EligibilityService {
	return &EligibilityService{purchases: purchases, users: users}
}

type purchaseTotals struct {
	count int
	spent float64
}

// Evaluate returns every qualifying member ordered by id.
func (s *EligibilityService) Evaluate(ctx context.Context, criteria models.EligibilityCriteria) ([]models.UserRef, error) {
	start := time.Now()
	refs, err := s.evaluate(ctx, criteria, nil)
	if err != nil {
		return nil, err
	}
	metrics.ObserveEligibility(time.Since(start), len(refs))
	slog.Debug("Eligibility evaluated", "eligible", len(refs), "minPurchases", criteria.EffectiveMinPurchases(), "minAmountSpent", criteria.MinAmountSpent)
	return refs, nil
}

// IsEligible reports whether a single member satisfies the criteria.
func (s *EligibilityService) IsEligible(ctx context.Context, criteria models.EligibilityCriteria, userID primitive.ObjectID) (bool, error) {
	refs, err := s.evaluate(ctx, criteria, []primitive.ObjectID{userID})
	if err != nil {
		return false, err
	}
	for _, ref := range refs {
		if ref.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *EligibilityService) evaluate(ctx context.Context, criteria models.EligibilityCriteria, only []primitive.ObjectID) ([]models.UserRef, error) {
	const op = "evaluate eligibility"

	withAmounts := criteria.MinAmountSpent > 0
	purchases, err := s.purchases.Query(ctx, models.PurchaseFilter{
		ApprovedOnly: true,
		From:         criteria.PurchaseStartDate,
		To:           criteria.PurchaseEndDate,
		ProductIDs:   criteria.EligibleProducts,
		UserIDs:      only,
		WithAmounts:  withAmounts,
	})
	if err != nil {
		return nil, apperror.Dependency(op, "purchase ledger query failed", err)
	}

	totals := make(map[primitive.ObjectID]*purchaseTotals)
	for _, p := range purchases {
		if !p.Approved() {
			continue
		}
		t, ok := totals[p.UserID]
		if !ok {
			t = &purchaseTotals{}
			totals[p.UserID] = t
		}
		t.count++
		if withAmounts {
			t.spent += p.Amount
		}
	}

	minPurchases := criteria.EffectiveMinPurchases()
	candidates := make([]primitive.ObjectID, 0, len(totals))
	for id, t := range totals {
		if t.count < minPurchases {
			continue
		}
		if withAmounts && t.spent < criteria.MinAmountSpent {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return []models.UserRef{}, nil
	}

	users, err := s.users.FindQualified(ctx, models.UserFilter{IDs: candidates, Status: models.UserStatusMember})
	if err != nil {
		return nil, apperror.Dependency(op, "user directory lookup failed", err)
	}

	refs := make([]models.UserRef, 0, len(users))
	for _, u := range users {
		if u.Status != models.UserStatusMember {
			continue
		}
		if _, ok := totals[u.ID]; !ok {
			continue
		}
		refs = append(refs, u.Ref())
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID.Hex() < refs[j].ID.Hex() })
	return refs, nil
}
