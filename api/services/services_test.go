package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EO-DataHub/eodhp-user-sync/db"
	"github.com/EO-DataHub/eodhp-user-sync/internal/appconfig"
	"github.com/EO-DataHub/eodhp-user-sync/internal/checks"
	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *MockGroupStore, *MockSyncRunner, *MockGroupChecker) {
	store := new(MockGroupStore)
	runner := new(MockSyncRunner)
	checker := new(MockGroupChecker)

	svc := &Service{
		Config: &appconfig.Config{
			Groups: appconfig.GroupsConfig{Custom: []string{"DBCA_Users", "Admins"}},
		},
		DB:      store,
		Sync:    runner,
		Checker: checker,
	}
	return svc, store, runner, checker
}

func TestGetGroupsService(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.On("GetGroups", mock.Anything).Return([]models.GroupSummary{
		{Group: models.Group{ID: uuid.New(), Name: "DBCA_Users"}, MemberCount: 12},
	}, nil)

	w := httptest.NewRecorder()
	GetGroupsService(svc, w, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "max-age=0", w.Header().Get("Cache-Control"))

	var resp models.GroupsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "DBCA_Users", resp.Groups[0].Name)
	assert.Equal(t, 12, resp.Groups[0].MemberCount)
}

func TestGetGroupsService_Empty(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.On("GetGroups", mock.Anything).Return(nil, nil)

	w := httptest.NewRecorder()
	GetGroupsService(svc, w, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"groups":[]}`, w.Body.String())
}

func TestGetGroupsService_DatabaseError(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.On("GetGroups", mock.Anything).Return(nil, fmt.Errorf("error querying groups: %w",
		&pq.Error{Code: "42P01", Message: `relation "groups" does not exist`}))

	w := httptest.NewRecorder()
	GetGroupsService(svc, w, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "undefined_table", resp.ErrorCode)
	assert.Equal(t, `relation "groups" does not exist`, resp.ErrorDetails)
}

func TestGetGroupMembersService(t *testing.T) {
	svc, store, _, _ := newTestService()
	group := &models.Group{ID: uuid.New(), Name: "DBCA_Users"}
	store.On("GetGroupByName", mock.Anything, "DBCA_Users").Return(group, nil)
	store.On("GetGroupMembers", mock.Anything, group.ID).Return([]models.User{
		{ID: uuid.New(), Email: "a@dept.gov.au"},
	}, nil)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/groups/DBCA_Users/users", nil),
		map[string]string{"group-name": "DBCA_Users"})
	w := httptest.NewRecorder()
	GetGroupMembersService(svc, w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.GroupMembersResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "DBCA_Users", resp.Group)
	require.Len(t, resp.Members, 1)
	assert.Equal(t, "a@dept.gov.au", resp.Members[0].Email)
}

func TestGetGroupMembersService_NotFound(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.On("GetGroupByName", mock.Anything, "Missing").Return(nil, fmt.Errorf("%w: Missing", db.ErrGroupNotFound))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/groups/Missing/users", nil),
		map[string]string{"group-name": "Missing"})
	w := httptest.NewRecorder()
	GetGroupMembersService(svc, w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	store.AssertNotCalled(t, "GetGroupMembers", mock.Anything, mock.Anything)
}

func TestCheckGroupsService(t *testing.T) {
	svc, _, _, checker := newTestService()
	checker.On("Check", mock.Anything, []string{"DBCA_Users", "Admins"}).Return(nil)

	w := httptest.NewRecorder()
	CheckGroupsService(svc, w, httptest.NewRequest(http.MethodPost, "/api/groups/check", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"checked":2,"failures":[]}`, w.Body.String())
}

func TestCheckGroupsService_Failures(t *testing.T) {
	svc, _, _, checker := newTestService()
	checker.On("Check", mock.Anything, mock.Anything).Return([]checks.Failure{
		{Group: "Admins", Err: errors.New("connection reset")},
	})

	w := httptest.NewRecorder()
	CheckGroupsService(svc, w, httptest.NewRequest(http.MethodPost, "/api/groups/check", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.GroupCheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Checked)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "Admins", resp.Failures[0].Group)
	assert.Equal(t, "connection reset", resp.Failures[0].Error)
}

func TestSyncUsersService(t *testing.T) {
	svc, _, runner, _ := newTestService()
	runner.On("Sync", mock.Anything).Return(&models.SyncReport{Received: 3, Created: 2, Updated: 1}, nil)

	w := httptest.NewRecorder()
	SyncUsersService(svc, w, httptest.NewRequest(http.MethodPost, "/api/users/sync", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var report models.SyncReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Updated)
	runner.AssertNumberOfCalls(t, "Sync", 1)
}

func TestSyncUsersService_Failure(t *testing.T) {
	svc, _, runner, _ := newTestService()
	runner.On("Sync", mock.Anything).Return(nil, errors.New("error fetching user roster: HTTP 401"))

	w := httptest.NewRecorder()
	SyncUsersService(svc, w, httptest.NewRequest(http.MethodPost, "/api/users/sync", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Empty(t, resp.ErrorCode)
	assert.Contains(t, resp.ErrorDetails, "HTTP 401")
}
