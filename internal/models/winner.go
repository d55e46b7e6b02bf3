package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryStatus tracks fulfilment of a prize.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusContacted DeliveryStatus = "contacted"
	DeliveryStatusShipped   DeliveryStatus = "shipped"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusContacted, DeliveryStatusShipped, DeliveryStatusDelivered:
		return true
	}
	return false
}

// WinnerSource records how a winner record came to exist.
type WinnerSource string

const (
	WinnerSourceDraw    WinnerSource = "draw"
	WinnerSourceReplace WinnerSource = "replace"
	WinnerSourceManual  WinnerSource = "manual"
)

// ContactInfo holds how to reach a winner for delivery.
type ContactInfo struct {
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// Winner represents one allocated prize slot.
type Winner struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	GiveawayID     primitive.ObjectID `bson:"giveawayId" json:"giveawayId"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	PrizeWon       PrizeSnapshot      `bson:"prizeWon" json:"prizeWon"`
	WonAt          time.Time          `bson:"wonAt" json:"wonAt"`
	DeliveryStatus DeliveryStatus     `bson:"deliveryStatus" json:"deliveryStatus"`
	ContactInfo    ContactInfo        `bson:"contactInfo" json:"contactInfo"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Source         WinnerSource       `bson:"source" json:"source"`
	LastUpdatedBy  string             `bson:"lastUpdatedBy,omitempty" json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt  *time.Time         `bson:"lastUpdatedAt,omitempty" json:"lastUpdatedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ContactInfoPatch carries optional contact field updates.
type ContactInfoPatch struct {
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// WinnerUpdate is a partial update of winner metadata. Nil fields are left untouched.
type WinnerUpdate struct {
	DeliveryStatus   *DeliveryStatus   `json:"deliveryStatus"`
	ContactInfo      *ContactInfoPatch `json:"contactInfo"`
	Notes            *string           `json:"notes"`
	PrizeDescription *string           `json:"prizeDescription"`
	PrizeImage       *string           `json:"prizeImage"`
}

// Empty reports whether the update changes nothing.
func (u WinnerUpdate) Empty() bool {
	return u.DeliveryStatus == nil && u.ContactInfo == nil && u.Notes == nil &&
		u.PrizeDescription == nil && u.PrizeImage == nil
}

// Apply writes the non-nil fields of u onto w.
func (u WinnerUpdate) Apply(w *Winner) {
	if u.DeliveryStatus != nil {
		w.DeliveryStatus = *u.DeliveryStatus
	}
	if u.ContactInfo != nil {
		if u.ContactInfo.Phone != nil {
			w.ContactInfo.Phone = *u.ContactInfo.Phone
		}
		if u.ContactInfo.Email != nil {
			w.ContactInfo.Email = *u.ContactInfo.Email
		}
		if u.ContactInfo.Address != nil {
			w.ContactInfo.Address = *u.ContactInfo.Address
		}
	}
	if u.Notes != nil {
		w.Notes = *u.Notes
	}
	if u.PrizeDescription != nil {
		w.PrizeWon.Description = *u.PrizeDescription
	}
	if u.PrizeImage != nil {
		w.PrizeWon.Image = *u.PrizeImage
	}
}

// WinnerListFilter selects winners of one giveaway.
type WinnerListFilter struct {
	GiveawayID     primitive.ObjectID
	DeliveryStatus DeliveryStatus
	Page           int
	Limit          int
}

// WinnerPage is one page of winners.
type WinnerPage struct {
	Winners []*Winner `json:"winners"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	Pages   int       `json:"pages"`
}

// ReplaceResult pairs the removed winner with its replacement.
type ReplaceResult struct {
	Removed     *Winner `json:"removed"`
	Replacement *Winner `json:"replacement"`
}

// ManualSelectRequest asks for a specific member to be placed on a prize tier.
type ManualSelectRequest struct {
	GiveawayID           primitive.ObjectID `json:"-"`
	UserID               primitive.ObjectID `json:"userId"`
	PrizeIndex           int                `json:"prizeIndex"`
	SkipEligibilityCheck bool               `json:"skipEligibilityCheck"`
	AdminID              string             `json:"-"`
}
