package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a local user record.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IsStaff   bool      `json:"isStaff"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// String renders the user the way it appears in sync logs.
func (u User) String() string {
	return u.Email
}
