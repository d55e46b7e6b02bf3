package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func notFound(entity string) error {
	return apperror.NotFound("fake", "%s not found", entity)
}

type memGiveawayRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Giveaway
}

func newMemGiveawayRepo() *memGiveawayRepo {
	return &memGiveawayRepo{items: make(map[primitive.ObjectID]models.Giveaway)}
}

func (r *memGiveawayRepo) Create(_ context.Context, g *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	r.items[g.ID] = *g
	return nil
}

func (r *memGiveawayRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	if !ok {
		return nil, notFound("giveaway")
	}
	return &g, nil
}

func (r *memGiveawayRepo) FindAll(_ context.Context, f models.GiveawayListFilter) ([]*models.Giveaway, int64, error) {
	all := r.filter(func(g models.Giveaway) bool { return f.Status == "" || g.Status == f.Status })
	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memGiveawayRepo) FindActive(_ context.Context, now time.Time) ([]*models.Giveaway, error) {
	return r.filter(func(g models.Giveaway) bool {
		return g.Status == models.GiveawayStatusActive && !g.StartDate.After(now) && !g.EndDate.Before(now)
	}), nil
}

func (r *memGiveawayRepo) FindDueForActivation(_ context.Context, now time.Time) ([]*models.Giveaway, error) {
	return r.filter(func(g models.Giveaway) bool {
		return g.Status == models.GiveawayStatusDraft && !g.StartDate.After(now)
	}), nil
}

func (r *memGiveawayRepo) FindDueForCompletion(_ context.Context, now time.Time) ([]*models.Giveaway, error) {
	return r.filter(func(g models.Giveaway) bool {
		return g.Status == models.GiveawayStatusActive && !g.EndDate.After(now)
	}), nil
}

func (r *memGiveawayRepo) CompareAndSetStatus(_ context.Context, id primitive.ObjectID, from, to models.GiveawayStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	if !ok || g.Status != from {
		return false, nil
	}
	g.Status = to
	g.UpdatedAt = at
	r.items[id] = g
	return true, nil
}

func (r *memGiveawayRepo) ClaimDraw(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.items[id]
	if !ok || g.DrawCompleted {
		return false, nil
	}
	g.DrawCompleted = true
	g.DrawCompletedAt = &at
	g.Status = models.GiveawayStatusCompleted
	r.items[id] = g
	return true, nil
}

func (r *memGiveawayRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("giveaway")
	}
	delete(r.items, id)
	return nil
}

func (r *memGiveawayRepo) CountByStatus(_ context.Context, status models.GiveawayStatus) (int64, error) {
	return int64(len(r.filter(func(g models.Giveaway) bool { return g.Status == status }))), nil
}

func (r *memGiveawayRepo) filter(keep func(models.Giveaway) bool) []*models.Giveaway {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Giveaway{}
	for _, g := range r.items {
		if keep(g) {
			g := g
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

type memWinnerRepo struct {
	mu       sync.Mutex
	items    map[primitive.ObjectID]models.Winner
	createFn func(w *models.Winner) error
}

func newMemWinnerRepo() *memWinnerRepo {
	return &memWinnerRepo{items: make(map[primitive.ObjectID]models.Winner)}
}

// Writes fail on a done context the way the driver does.
func (r *memWinnerRepo) Create(ctx context.Context, w *models.Winner) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createFn != nil {
		if err := r.createFn(w); err != nil {
			return err
		}
	}
	for _, existing := range r.items {
		if existing.GiveawayID == w.GiveawayID && existing.UserID == w.UserID {
			return apperror.Conflict("create winner", "winner already exists")
		}
	}
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	r.items[w.ID] = *w
	return nil
}

func (r *memWinnerRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[id]
	if !ok {
		return nil, notFound("winner")
	}
	return &w, nil
}

func (r *memWinnerRepo) FindByGiveawayID(_ context.Context, giveawayID primitive.ObjectID) ([]*models.Winner, error) {
	return r.filter(func(w models.Winner) bool { return w.GiveawayID == giveawayID }), nil
}

func (r *memWinnerRepo) FindPage(_ context.Context, f models.WinnerListFilter) ([]*models.Winner, int64, error) {
	all := r.filter(func(w models.Winner) bool {
		return w.GiveawayID == f.GiveawayID && (f.DeliveryStatus == "" || w.DeliveryStatus == f.DeliveryStatus)
	})
	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memWinnerRepo) FindRecent(_ context.Context, limit int) ([]*models.Winner, error) {
	all := r.filter(func(models.Winner) bool { return true })
	sort.SliceStable(all, func(i, j int) bool { return all[i].WonAt.After(all[j].WonAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memWinnerRepo) ExistsForUser(_ context.Context, giveawayID, userID primitive.ObjectID) (bool, error) {
	return len(r.filter(func(w models.Winner) bool { return w.GiveawayID == giveawayID && w.UserID == userID })) > 0, nil
}

func (r *memWinnerRepo) CountByPrize(_ context.Context, giveawayID primitive.ObjectID, prizeName string) (int64, error) {
	return int64(len(r.filter(func(w models.Winner) bool { return w.GiveawayID == giveawayID && w.PrizeWon.Name == prizeName }))), nil
}

func (r *memWinnerRepo) UserIDsByGiveaway(_ context.Context, giveawayID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, w := range r.filter(func(w models.Winner) bool { return w.GiveawayID == giveawayID }) {
		ids = append(ids, w.UserID)
	}
	return ids, nil
}

func (r *memWinnerRepo) Update(_ context.Context, w *models.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[w.ID]; !ok {
		return notFound("winner")
	}
	r.items[w.ID] = *w
	return nil
}

func (r *memWinnerRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("winner")
	}
	delete(r.items, id)
	return nil
}

func (r *memWinnerRepo) DeleteByGiveawayID(_ context.Context, giveawayID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, w := range r.items {
		if w.GiveawayID == giveawayID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *memWinnerRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *memWinnerRepo) filter(keep func(models.Winner) bool) []*models.Winner {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Winner{}
	for _, w := range r.items {
		if keep(w) {
			w := w
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

type memPurchaseRepo struct {
	mu        sync.Mutex
	purchases []models.Purchase
	queryErr  error
	queries   int
	last      models.PurchaseFilter
}

func (r *memPurchaseRepo) Create(_ context.Context, p *models.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.purchases = append(r.purchases, *p)
	return nil
}

func (r *memPurchaseRepo) Query(_ context.Context, f models.PurchaseFilter) ([]*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++
	r.last = f
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	products := make(map[primitive.ObjectID]bool)
	for _, id := range f.ProductIDs {
		products[id] = true
	}
	users := make(map[primitive.ObjectID]bool)
	for _, id := range f.UserIDs {
		users[id] = true
	}
	out := []*models.Purchase{}
	for _, p := range r.purchases {
		p := p
		if f.ApprovedOnly && !p.Approved() {
			continue
		}
		if f.From != nil && p.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && p.CreatedAt.After(*f.To) {
			continue
		}
		if len(products) > 0 && !products[p.ProductID] {
			continue
		}
		if len(users) > 0 && !users[p.UserID] {
			continue
		}
		if !f.WithAmounts {
			p.Amount = 0
		}
		out = append(out, &p)
	}
	return out, nil
}

func (r *memPurchaseRepo) CountApproved(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.purchases {
		if p.Approved() {
			n++
		}
	}
	return n, nil
}

type memUserRepo struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]models.User
	findErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]models.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Status == "" {
		u.Status = models.UserStatusMember
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (r *memUserRepo) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			u := u
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (r *memUserRepo) FindQualified(_ context.Context, f models.UserFilter) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	ids := make(map[primitive.ObjectID]bool)
	for _, id := range f.IDs {
		ids[id] = true
	}
	out := []*models.User{}
	for _, u := range r.users {
		u := u
		if f.IDs != nil && !ids[u.ID] {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, &u)
	}
	return out, nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events []models.GiveawayEvent
}

func (r *memEventRepo) Create(_ context.Context, e *models.GiveawayEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *memEventRepo) FindByGiveawayID(_ context.Context, giveawayID primitive.ObjectID, limit int) ([]*models.GiveawayEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.GiveawayEvent{}
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].GiveawayID == giveawayID {
			e := r.events[i]
			out = append(out, &e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memEventRepo) ofType(t models.EventType) []models.GiveawayEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.GiveawayEvent
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.GiveawayEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *models.GiveawayEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// testEnv wires every service over in-memory repositories.
type testEnv struct {
	now       time.Time
	giveaways *memGiveawayRepo
	winners   *memWinnerRepo
	purchases *memPurchaseRepo
	users     *memUserRepo
	eventRepo *memEventRepo
	publisher *recordingPublisher

	eligibility *EligibilityService
	ledger      *WinnerLedger
	draws       *DrawService
	overrides   *AdminOverrideService
	lifecycle   *LifecycleService
	giveawaySvc *GiveawayService
	dashboard   *DashboardService
}

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T, seed int64) *testEnv {
	t.Helper()
	env := &testEnv{
		now:       testNow,
		giveaways: newMemGiveawayRepo(),
		winners:   newMemWinnerRepo(),
		purchases: &memPurchaseRepo{},
		users:     newMemUserRepo(),
		eventRepo: &memEventRepo{},
		publisher: &recordingPublisher{},
	}
	clock := ClockFunc(func() time.Time { return env.now })
	locker := NewKeyedMutex()
	picker := NewSeededPicker(seed)
	events := NewEventRecorder(env.eventRepo, env.publisher)

	env.eligibility = NewEligibilityService(env.purchases, env.users)
	env.ledger = NewWinnerLedger(env.giveaways, env.winners, env.eligibility, picker, locker, events, clock)
	env.draws = NewDrawService(env.giveaways, env.winners, env.eligibility, env.ledger, picker, locker, events, clock)
	env.overrides = NewAdminOverrideService(env.giveaways, env.users, env.ledger, clock)
	env.lifecycle = NewLifecycleService(env.giveaways, events, clock)
	env.giveawaySvc = NewGiveawayService(env.giveaways, env.winners, env.eventRepo, env.eligibility, locker, events, clock)
	env.dashboard = NewDashboardService(env.giveaways, env.winners, env.purchases, env.users, clock)
	return env
}

// addGiveaway stores a completed giveaway whose draw date has passed.
func (e *testEnv) addGiveaway(t *testing.T, prizes ...models.Prize) *models.Giveaway {
	t.Helper()
	g := &models.Giveaway{
		Title:       "Summer Giveaway",
		Description: "Prizes for loyal customers",
		Prizes:      prizes,
		Status:      models.GiveawayStatusCompleted,
		StartDate:   e.now.Add(-30 * 24 * time.Hour),
		EndDate:     e.now.Add(-2 * 24 * time.Hour),
		DrawDate:    e.now.Add(-24 * time.Hour),
	}
	if err := e.giveaways.Create(context.Background(), g); err != nil {
		t.Fatalf("create giveaway: %v", err)
	}
	return g
}

// addMember creates a member with the given number of approved purchases of amount each.
func (e *testEnv) addMember(t *testing.T, name string, purchases int, amount float64) models.User {
	t.Helper()
	u := &models.User{Name: name, Phone: "0803" + name, Status: models.UserStatusMember}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	for i := 0; i < purchases; i++ {
		e.addPurchase(t, u.ID, amount, true)
	}
	return *u
}

func (e *testEnv) addPurchase(t *testing.T, userID primitive.ObjectID, amount float64, approved bool) {
	t.Helper()
	p := &models.Purchase{
		UserID:          userID,
		ProductID:       primitive.NewObjectID(),
		Amount:          amount,
		UserPayment:     models.PaymentStatusPayed,
		PaymentApproval: models.ApprovalStatusCompleted,
		CreatedAt:       e.now.Add(-10 * 24 * time.Hour),
	}
	if !approved {
		p.PaymentApproval = models.ApprovalStatusPending
	}
	if err := e.purchases.Create(context.Background(), p); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
}

func prize(name string, quantity int) models.Prize {
	return models.Prize{Name: name, Description: name + " prize", Value: 100, Quantity: quantity}
}

func countByPrize(winners []*models.Winner) map[string]int {
	counts := make(map[string]int)
	for _, w := range winners {
		counts[w.PrizeWon.Name]++
	}
	return counts
}

func assertDistinctUsers(t *testing.T, winners []*models.Winner) {
	t.Helper()
	seen := make(map[primitive.ObjectID]bool)
	for _, w := range winners {
		if seen[w.UserID] {
			t.Fatalf("user %s won more than once", w.UserID.Hex())
		}
		seen[w.UserID] = true
	}
}
