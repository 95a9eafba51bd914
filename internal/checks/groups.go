package checks

import (
	"context"
	"fmt"

	"github.com/EO-DataHub/eodhp-user-sync/internal/metrics"
	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/rs/zerolog"
)

// migrationCommands never trigger the startup group check.
var migrationCommands = map[string]bool{
	"migrate":         true,
	"makemigrations":  true,
	"showmigrations":  true,
	"sqlmigrate":      true,
	"init-db-migrate": true,
}

// IsMigrationCommand reports whether args invoke a migration-family command.
func IsMigrationCommand(args []string) bool {
	for _, arg := range args {
		if migrationCommands[arg] {
			return true
		}
	}
	return false
}

// GroupCreator looks up a group by name, creating it when absent.
type GroupCreator interface {
	GetOrCreateGroup(ctx context.Context, name string) (*models.Group, bool, error)
}

// Failure records a group that could not be ensured.
type Failure struct {
	Group string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s, Group: [%s]", f.Err, f.Group)
}

func (f Failure) Unwrap() error {
	return f.Err
}

type GroupChecker struct {
	Store   GroupCreator
	Metrics *metrics.SyncMetrics
	Log     *zerolog.Logger
}

func NewGroupChecker(store GroupCreator, log *zerolog.Logger) *GroupChecker {
	return &GroupChecker{Store: store, Log: log}
}

// Check ensures every named group exists. Failures are collected and the
// remaining groups are still processed.
func (c *GroupChecker) Check(ctx context.Context, names []string) []Failure {
	var failures []Failure
	created := 0

	for _, name := range names {
		_, wasCreated, err := c.Store.GetOrCreateGroup(ctx, name)
		if err != nil {
			c.Log.Error().Err(err).Str("group", name).Msg("Failed to ensure group exists")
			failures = append(failures, Failure{Group: name, Err: err})
			continue
		}

		if wasCreated {
			created++
			c.Log.Info().Str("group", name).Msg("Group created")
		} else {
			c.Log.Debug().Str("group", name).Msg("Group already exists")
		}
	}

	c.Metrics.ObserveGroupCheck(created, len(failures))
	return failures
}
