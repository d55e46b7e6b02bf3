package services

import (
	"context"

	"github.com/ArowuTest/giveaway-draw-backend/internal/metrics"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// EventPublisher delivers giveaway events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.GiveawayEvent) error
	Close() error
}

// LogPublisher writes events to the structured log. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event *models.GiveawayEvent) error {
	slog.Info("Giveaway event",
		"type", event.Type,
		"giveawayId", event.GiveawayID.Hex(),
		"trigger", event.Trigger,
		"from", event.FromStatus,
		"to", event.ToStatus,
		"prize", event.PrizeName,
		"actor", event.Actor)
	return nil
}

func (LogPublisher) Close() error { return nil }

// EventRecorder persists giveaway events and publishes them. Events are recorded
// after the state change they describe has committed, so failures are logged and
// counted but never undo the change.
type EventRecorder struct {
	repo      repositories.GiveawayEventRepository
	publisher EventPublisher
}

func NewEventRecorder(repo repositories.GiveawayEventRepository, publisher EventPublisher) *EventRecorder {
	if publisher == nil {
		publisher = LogPublisher{}
	}
	return &EventRecorder{repo: repo, publisher: publisher}
}

func (r *EventRecorder) Record(ctx context.Context, events ...*models.GiveawayEvent) {
	if r == nil {
		return
	}
	for _, event := range events {
		if r.repo != nil {
			if err := r.repo.Create(ctx, event); err != nil {
				metrics.IncEventPublishError()
				slog.Error("Failed to persist giveaway event", "error", err, "giveawayId", event.GiveawayID.Hex(), "type", event.Type)
			}
		}
		if err := r.publisher.Publish(ctx, event); err != nil {
			metrics.IncEventPublishError()
			slog.Error("Failed to publish giveaway event", "error", err, "giveawayId", event.GiveawayID.Hex(), "type", event.Type)
		}
	}
}
