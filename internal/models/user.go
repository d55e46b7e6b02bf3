package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStatus is the membership level of a user.
type UserStatus string

const (
	UserStatusMember UserStatus = "user"
	UserStatusAdmin  UserStatus = "admin"
)

// User represents a member in the user directory
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone" json:"phone"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Status    UserStatus         `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Ref returns the reference handed to draw results and eligibility listings.
func (u *User) Ref() UserRef {
	return UserRef{
		ID:               u.ID,
		Name:             u.Name,
		ContactPhone:     u.Phone,
		MembershipStatus: u.Status,
	}
}

// UserRef identifies a member with the fields needed for a winner record.
type UserRef struct {
	ID               primitive.ObjectID `json:"id"`
	Name             string             `json:"name"`
	ContactPhone     string             `json:"contactPhone,omitempty"`
	MembershipStatus UserStatus         `json:"membershipStatus"`
}

// UserFilter selects users from the directory. A non-nil empty IDs slice matches nothing.
type UserFilter struct {
	IDs    []primitive.ObjectID
	Status UserStatus
}
