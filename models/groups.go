package models

import (
	"time"

	"github.com/google/uuid"
)

// Group represents a named group of users.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupSummary is a group with the number of linked users.
type GroupSummary struct {
	Group
	MemberCount int `json:"memberCount"`
}

// GroupsResponse holds a list of groups.
type GroupsResponse struct {
	Groups []GroupSummary `json:"groups"`
}

// GroupMembersResponse represents a response with a list of group members.
type GroupMembersResponse struct {
	Group   string `json:"group"`
	Members []User `json:"members"`
}

// GroupCheckFailure is a single failed group in a consistency check.
type GroupCheckFailure struct {
	Group string `json:"group"`
	Error string `json:"error"`
}

// GroupCheckResponse reports the outcome of a consistency check.
type GroupCheckResponse struct {
	Checked  int                 `json:"checked"`
	Failures []GroupCheckFailure `json:"failures"`
}
