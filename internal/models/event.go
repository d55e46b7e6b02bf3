package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventTypeStatusChanged   EventType = "status_changed"
	EventTypeWinnerAllocated EventType = "winner_allocated"
	EventTypeWinnerRemoved   EventType = "winner_removed"
)

// EventTrigger names what caused an event.
type EventTrigger string

const (
	TriggerLifecycle EventTrigger = "lifecycle"
	TriggerAdmin     EventTrigger = "admin"
	TriggerDraw      EventTrigger = "draw"
)

// GiveawayEvent is an audit record of a giveaway state change, also published to
// downstream consumers such as notification delivery.
type GiveawayEvent struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	GiveawayID primitive.ObjectID  `json:"giveawayId" bson:"giveawayId"`
	Type       EventType           `json:"type" bson:"type"`
	Trigger    EventTrigger        `json:"trigger" bson:"trigger"`
	FromStatus GiveawayStatus      `json:"fromStatus,omitempty" bson:"fromStatus,omitempty"`
	ToStatus   GiveawayStatus      `json:"toStatus,omitempty" bson:"toStatus,omitempty"`
	WinnerID   *primitive.ObjectID `json:"winnerId,omitempty" bson:"winnerId,omitempty"`
	UserID     *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`
	PrizeName  string              `json:"prizeName,omitempty" bson:"prizeName,omitempty"`
	Actor      string              `json:"actor,omitempty" bson:"actor,omitempty"`
	OccurredAt time.Time           `json:"occurredAt" bson:"occurredAt"`
}

// NewStatusEvent builds a status change event.
func NewStatusEvent(giveawayID primitive.ObjectID, from, to GiveawayStatus, trigger EventTrigger, actor string, at time.Time) *GiveawayEvent {
	return &GiveawayEvent{
		GiveawayID: giveawayID,
		Type:       EventTypeStatusChanged,
		Trigger:    trigger,
		FromStatus: from,
		ToStatus:   to,
		Actor:      actor,
		OccurredAt: at,
	}
}

// NewWinnerEvent builds a winner allocation or removal event.
func NewWinnerEvent(t EventType, w *Winner, trigger EventTrigger, actor string, at time.Time) *GiveawayEvent {
	winnerID, userID := w.ID, w.UserID
	return &GiveawayEvent{
		GiveawayID: w.GiveawayID,
		Type:       t,
		Trigger:    trigger,
		WinnerID:   &winnerID,
		UserID:     &userID,
		PrizeName:  w.PrizeWon.Name,
		Actor:      actor,
		OccurredAt: at,
	}
}
