package models

import "time"

// DashboardCounts are headline totals for the public dashboard.
type DashboardCounts struct {
	ActiveGiveaways    int64 `json:"activeGiveaways"`
	CompletedGiveaways int64 `json:"completedGiveaways"`
	TotalWinners       int64 `json:"totalWinners"`
	ApprovedPurchases  int64 `json:"approvedPurchases"`
}

// RecentWinner is a public view of a winner. Phone numbers are masked.
type RecentWinner struct {
	Name          string    `json:"name"`
	MaskedPhone   string    `json:"maskedPhone,omitempty"`
	GiveawayTitle string    `json:"giveawayTitle"`
	PrizeName     string    `json:"prizeName"`
	WonAt         time.Time `json:"wonAt"`
}

// Dashboard is a read model derived on demand from giveaways, winners and purchases.
type Dashboard struct {
	Counts          DashboardCounts `json:"counts"`
	ActiveGiveaways []*Giveaway     `json:"activeGiveaways"`
	RecentWinners   []RecentWinner  `json:"recentWinners"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}
