package usersync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/EO-DataHub/eodhp-user-sync/db"
	"github.com/EO-DataHub/eodhp-user-sync/internal/appconfig"
	"github.com/EO-DataHub/eodhp-user-sync/internal/events"
	"github.com/EO-DataHub/eodhp-user-sync/internal/metrics"
	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultFirstName = "No First Name"
	DefaultLastName  = "No Last Name"
)

// ErrMalformedEmail is returned for roster entries whose email has no '@'.
var ErrMalformedEmail = errors.New("malformed email address")

// RosterSource provides the remote user roster.
type RosterSource interface {
	FetchUsers(ctx context.Context) ([]models.RosterEntry, error)
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	GetActiveUsersByEmailSuffix(ctx context.Context, suffixes []string) ([]models.User, error)
}

type GroupRepository interface {
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	LinkUsersToGroup(ctx context.Context, userIDs []uuid.UUID, groupID uuid.UUID) (int, error)
}

// Store is the persistence needed by a sync run.
type Store interface {
	UserRepository
	GroupRepository
}

// Notifier escalates failed runs to administrators.
type Notifier interface {
	NotifySyncError(ctx context.Context, syncErr error, at time.Time) error
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	Notify(event events.UserSyncEvent) error
}

// Synchronizer reconciles the remote roster with the local users table.
type Synchronizer struct {
	Roster         RosterSource
	Users          UserRepository
	Groups         GroupRepository
	Mailer         Notifier
	Events         EventPublisher
	Metrics        *metrics.SyncMetrics
	AllowedDomains []string
	LinkageGroup   string
	SkipMalformed  bool
	Log            *zerolog.Logger
	Now            func() time.Time

	mu sync.Mutex
}

// NewSynchronizer builds a Synchronizer from the sync configuration.
func NewSynchronizer(cfg appconfig.SyncConfig, roster RosterSource, store Store, mailer Notifier, log *zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		Roster:         roster,
		Users:          store,
		Groups:         store,
		Mailer:         mailer,
		AllowedDomains: cfg.NormalizedDomains(),
		LinkageGroup:   cfg.LinkageGroup,
		SkipMalformed:  cfg.SkipMalformed,
		Log:            log,
	}
}

func (s *Synchronizer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Sync runs a synchronisation and escalates any failure, including a panic,
// to the administrators. The error is returned after escalation.
func (s *Synchronizer) Sync(ctx context.Context) (report *models.SyncReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during user sync: %v", r)
		}
		s.finish(ctx, report, err)
	}()

	return s.Run(ctx)
}

func (s *Synchronizer) finish(ctx context.Context, report *models.SyncReport, syncErr error) {
	at := s.now()
	s.Metrics.ObserveRun(report, syncErr)

	if syncErr != nil {
		s.Log.Error().Err(syncErr).Msg("User sync failed")

		if s.Mailer != nil {
			// Escalate even if the caller's context is already done
			if err := s.Mailer.NotifySyncError(context.WithoutCancel(ctx), syncErr, at); err != nil {
				s.Log.Error().Err(err).Msg("Failed to notify administrators of sync error")
			}
		} else {
			s.Log.Warn().Msg("No mailer configured, sync error not escalated")
		}
	}

	if s.Events != nil {
		if err := s.Events.Notify(events.NewUserSyncEvent(report, syncErr, at)); err != nil {
			s.Log.Error().Err(err).Msg("Failed to publish user sync event")
		}
	}
}

// Run fetches the roster, upserts every allowed user and links active users
// of the allowed domains to the linkage group. It stops at the first error;
// writes made before it remain in place.
func (s *Synchronizer) Run(ctx context.Context) (*models.SyncReport, error) {
	report := &models.SyncReport{StartedAt: s.now()}

	entries, err := s.Roster.FetchUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("error fetching user roster: %w", err)
	}
	report.Received = len(entries)
	s.Log.Info().Int("entries", len(entries)).Msg("Fetched user roster")

	allowed := make(map[string]bool, len(s.AllowedDomains))
	for _, d := range s.AllowedDomains {
		allowed[d] = true
	}

	for i, entry := range entries {
		domain, err := emailDomain(entry.Email)
		if err != nil {
			if s.SkipMalformed {
				s.Log.Warn().Int("index", i).Str("email", entry.Email).Msg("Skipping malformed roster entry")
				report.Malformed++
				continue
			}
			return report, fmt.Errorf("roster entry %d: %w", i, err)
		}

		if !allowed[domain] {
			report.Skipped++
			continue
		}

		created, err := s.upsertUser(ctx, entry)
		if err != nil {
			return report, err
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	if err := s.linkUsers(ctx, report); err != nil {
		return report, err
	}

	report.FinishedAt = s.now()
	s.Log.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Msgf("User sync complete. Created: %d, Updated: %d", report.Created, report.Updated)

	return report, nil
}

// emailDomain returns the lowercased text between the first and second '@'.
func emailDomain(email string) (string, error) {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedEmail, email)
	}
	return strings.ToLower(parts[1]), nil
}

func nameOrDefault(name *string, fallback string) string {
	if name == nil || strings.TrimSpace(*name) == "" {
		return fallback
	}
	return *name
}

// upsertUser creates or updates the local user for entry and reports whether it was created.
func (s *Synchronizer) upsertUser(ctx context.Context, entry models.RosterEntry) (bool, error) {
	email := strings.ToLower(entry.Email)
	firstName := nameOrDefault(entry.GivenName, DefaultFirstName)
	lastName := nameOrDefault(entry.Surname, DefaultLastName)

	existing, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("error looking up user %s: %w", email, err)
	}

	if existing != nil {
		existing.FirstName = firstName
		existing.LastName = lastName
		existing.IsStaff = true
		if err := s.Users.UpdateUser(ctx, existing); err != nil {
			return false, fmt.Errorf("error updating user %s: %w", email, err)
		}
		s.Log.Debug().Str("email", email).Msg("Updated user")
		return false, nil
	}

	_, err = s.Users.CreateUser(ctx, &models.User{
		Username:  email,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		IsStaff:   true,
		IsActive:  true,
	})
	if err != nil {
		return false, fmt.Errorf("error creating user %s: %w", email, err)
	}
	s.Log.Debug().Str("email", email).Msg("Created user")
	return true, nil
}

// linkUsers adds every active user of the allowed domains to the linkage group.
// A missing group is logged and the linkage step skipped.
func (s *Synchronizer) linkUsers(ctx context.Context, report *models.SyncReport) error {
	if s.LinkageGroup == "" {
		s.Log.Error().Msg("No linkage group configured, skipping group linkage")
		return nil
	}

	group, err := s.Groups.GetGroupByName(ctx, s.LinkageGroup)
	if errors.Is(err, db.ErrGroupNotFound) {
		s.Log.Error().Str("group", s.LinkageGroup).Msgf("%s group does not exist, skipping group linkage", s.LinkageGroup)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error retrieving group %s: %w", s.LinkageGroup, err)
	}
	report.GroupFound = true

	suffixes := make([]string, 0, len(s.AllowedDomains))
	for _, d := range s.AllowedDomains {
		suffixes = append(suffixes, "@"+d)
	}

	users, err := s.Users.GetActiveUsersByEmailSuffix(ctx, suffixes)
	if err != nil {
		return fmt.Errorf("error retrieving users to link: %w", err)
	}
	if len(users) == 0 {
		s.Log.Info().Msgf("No users found to add to the %s group", group.Name)
		return nil
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	created, err := s.Groups.LinkUsersToGroup(ctx, ids, group.ID)
	if err != nil {
		return fmt.Errorf("error linking users to group %s: %w", group.Name, err)
	}

	report.UsersToLink = len(users)
	report.LinksCreated = created
	report.LinksConfirmed = len(users) - created

	s.Log.Info().Msgf("Successfully processed %d users for the %s group. (%d links were created or confirmed to exist)",
		len(users), group.Name, len(users))

	return nil
}
