package services

import (
	"context"

	"github.com/EO-DataHub/eodhp-user-sync/internal/checks"
	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockGroupStore struct {
	mock.Mock
}

type MockSyncRunner struct {
	mock.Mock
}

type MockGroupChecker struct {
	mock.Mock
}

func (m *MockGroupStore) GetGroups(ctx context.Context) ([]models.GroupSummary, error) {
	args := m.Called(ctx)
	groups, _ := args.Get(0).([]models.GroupSummary)
	return groups, args.Error(1)
}

func (m *MockGroupStore) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	args := m.Called(ctx, name)
	group, _ := args.Get(0).(*models.Group)
	return group, args.Error(1)
}

func (m *MockGroupStore) GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, groupID)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockSyncRunner) Sync(ctx context.Context) (*models.SyncReport, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*models.SyncReport)
	return report, args.Error(1)
}

func (m *MockGroupChecker) Check(ctx context.Context, names []string) []checks.Failure {
	args := m.Called(ctx, names)
	failures, _ := args.Get(0).([]checks.Failure)
	return failures
}
