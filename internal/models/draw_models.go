package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Allocation is one prize slot handed to a member by a draw.
type Allocation struct {
	WinnerID primitive.ObjectID `json:"winnerId"`
	Prize    PrizeSnapshot      `json:"prize"`
	User     UserRef            `json:"user"`
}

// DrawResult summarises a completed draw.
type DrawResult struct {
	GiveawayID    primitive.ObjectID `json:"giveawayId"`
	Allocations   []Allocation       `json:"allocations"`
	EligibleCount int                `json:"eligibleCount"`
	UnfilledSlots int                `json:"unfilledSlots"`
	CompletedAt   time.Time          `json:"completedAt"`
}

// SweepResult counts the transitions applied by one lifecycle sweep.
type SweepResult struct {
	Activated int `json:"activated"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
}
