package models

import "time"

// RosterEntry is one user as returned by the identity service roster.
type RosterEntry struct {
	Email     string  `json:"email"`
	GivenName *string `json:"given_name"`
	Surname   *string `json:"surname"`
}

// SyncReport summarises a single roster synchronisation run.
type SyncReport struct {
	Received       int       `json:"received"`
	Skipped        int       `json:"skipped"`
	Malformed      int       `json:"malformed"`
	Created        int       `json:"created"`
	Updated        int       `json:"updated"`
	GroupFound     bool      `json:"groupFound"`
	UsersToLink    int       `json:"usersToLink"`
	LinksCreated   int       `json:"linksCreated"`
	LinksConfirmed int       `json:"linksConfirmed"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
}
