package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus is the payer-side state of a purchase.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusInProgress PaymentStatus = "in-progress"
	PaymentStatusPayed      PaymentStatus = "payed"
)

// ApprovalStatus is the merchant-side state of a purchase.
type ApprovalStatus string

const (
	ApprovalStatusPending    ApprovalStatus = "pending"
	ApprovalStatusInProgress ApprovalStatus = "in-progress"
	ApprovalStatusCompleted  ApprovalStatus = "completed"
)

// Purchase represents an order in the purchase ledger
type Purchase struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	ProductID       primitive.ObjectID `bson:"productId" json:"productId"`
	Amount          float64            `bson:"amount" json:"amount"`
	TransactionRef  string             `bson:"transactionRef,omitempty" json:"transactionRef,omitempty"`
	UserPayment     PaymentStatus      `bson:"userPayment" json:"userPayment"`
	PaymentApproval ApprovalStatus     `bson:"paymentApproval" json:"paymentApproval"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Approved reports whether the purchase counts toward eligibility.
func (p *Purchase) Approved() bool {
	return p.PaymentApproval == ApprovalStatusCompleted && p.UserPayment == PaymentStatusPayed
}

// PurchaseFilter selects purchases from the ledger. Zero values do not filter.
type PurchaseFilter struct {
	ApprovedOnly bool
	From         *time.Time
	To           *time.Time
	ProductIDs   []primitive.ObjectID
	UserIDs      []primitive.ObjectID
	// WithAmounts loads purchase amounts. Without it Amount is left zero.
	WithAmounts bool
}
