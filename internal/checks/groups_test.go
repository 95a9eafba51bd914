package checks

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memGroups struct {
	groups map[string]*models.Group
	fail   map[string]error
}

func (m *memGroups) GetOrCreateGroup(ctx context.Context, name string) (*models.Group, bool, error) {
	if err, ok := m.fail[name]; ok {
		return nil, false, err
	}
	if g, ok := m.groups[name]; ok {
		return g, false, nil
	}
	g := &models.Group{ID: uuid.New(), Name: name}
	m.groups[name] = g
	return g, true, nil
}

func newChecker(store GroupCreator) *GroupChecker {
	logger := zerolog.New(os.Stdout)
	return NewGroupChecker(store, &logger)
}

func TestCheck_CreatesMissingGroups(t *testing.T) {
	store := &memGroups{groups: map[string]*models.Group{}}
	checker := newChecker(store)
	names := []string{"DBCA_Users", "Admins", "Editors"}

	failures := checker.Check(context.Background(), names)
	assert.Empty(t, failures)
	assert.Len(t, store.groups, 3)

	// Second run is a no-op
	ids := map[string]uuid.UUID{}
	for name, g := range store.groups {
		ids[name] = g.ID
	}
	failures = checker.Check(context.Background(), names)
	assert.Empty(t, failures)
	assert.Len(t, store.groups, 3)
	for name, g := range store.groups {
		assert.Equal(t, ids[name], g.ID)
	}
}

func TestCheck_CollectsFailures(t *testing.T) {
	store := &memGroups{
		groups: map[string]*models.Group{},
		fail:   map[string]error{"Broken": errors.New("permission denied for table groups")},
	}
	checker := newChecker(store)

	failures := checker.Check(context.Background(), []string{"Before", "Broken", "After"})

	require.Len(t, failures, 1)
	assert.Equal(t, "Broken", failures[0].Group)
	assert.Equal(t, "permission denied for table groups, Group: [Broken]", failures[0].Error())
	assert.ErrorIs(t, failures[0], store.fail["Broken"])
	assert.Contains(t, store.groups, "Before")
	assert.Contains(t, store.groups, "After")
}

func TestIsMigrationCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"migrate", []string{"migrate"}, true},
		{"makemigrations", []string{"--log", "info", "makemigrations"}, true},
		{"showmigrations", []string{"showmigrations"}, true},
		{"sqlmigrate", []string{"sqlmigrate", "users", "0001"}, true},
		{"own migrate command", []string{"init-db-migrate", "--config", "config.yaml"}, true},
		{"sync", []string{"sync-users"}, false},
		{"serve", []string{"serve", "--config", "migrate.yaml"}, false},
		{"no args", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMigrationCommand(tt.args))
		})
	}
}
