package services

import (
	"context"

	"github.com/EO-DataHub/eodhp-user-sync/internal/appconfig"
	"github.com/EO-DataHub/eodhp-user-sync/internal/checks"
	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/google/uuid"
)

// GroupStore is the read side of the store used by the API.
type GroupStore interface {
	GetGroups(ctx context.Context) ([]models.GroupSummary, error)
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error)
}

// SyncRunner runs a roster synchronisation with failure escalation.
type SyncRunner interface {
	Sync(ctx context.Context) (*models.SyncReport, error)
}

// GroupChecker ensures a set of groups exist.
type GroupChecker interface {
	Check(ctx context.Context, names []string) []checks.Failure
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config  *appconfig.Config
	DB      GroupStore
	Sync    SyncRunner
	Checker GroupChecker
}
