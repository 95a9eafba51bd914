package services

import (
	"errors"
	"net/http"

	"github.com/EO-DataHub/eodhp-user-sync/db"
	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// GetGroupsService lists every group with its member count.
func GetGroupsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	groups, err := svc.DB.GetGroups(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving groups")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	// Return an empty list rather than null
	if groups == nil {
		groups = []models.GroupSummary{}
	}

	logger.Info().Int("group_count", len(groups)).Msg("Successfully retrieved groups")
	WriteResponse(w, http.StatusOK, models.GroupsResponse{Groups: groups})
}

// GetGroupMembersService lists the users linked to a group.
func GetGroupMembersService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	name := mux.Vars(r)["group-name"]
	logger.Info().Str("group", name).Msg("Retrieving group members")

	group, err := svc.DB.GetGroupByName(r.Context(), name)
	if errors.Is(err, db.ErrGroupNotFound) {
		logger.Warn().Str("group", name).Msg("Group does not exist")
		HandleErrResponse(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("group", name).Msg("Database error retrieving group")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	members, err := svc.DB.GetGroupMembers(r.Context(), group.ID)
	if err != nil {
		logger.Error().Err(err).Str("group", name).Msg("Database error retrieving group members")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	if members == nil {
		members = []models.User{}
	}

	logger.Info().Str("group", name).Int("member_count", len(members)).Msg("Successfully retrieved group members")
	WriteResponse(w, http.StatusOK, models.GroupMembersResponse{Group: group.Name, Members: members})
}

// CheckGroupsService ensures every configured group exists and reports the ones that could not be created.
func CheckGroupsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	names := svc.Config.Groups.Custom
	failures := svc.Checker.Check(r.Context(), names)

	response := models.GroupCheckResponse{
		Checked:  len(names),
		Failures: make([]models.GroupCheckFailure, 0, len(failures)),
	}
	for _, f := range failures {
		response.Failures = append(response.Failures, models.GroupCheckFailure{
			Group: f.Group,
			Error: f.Err.Error(),
		})
	}

	if len(failures) > 0 {
		logger.Warn().Int("failures", len(failures)).Msg("Group check completed with failures")
		WriteResponse(w, http.StatusInternalServerError, response)
		return
	}

	logger.Info().Int("checked", len(names)).Msg("Group check completed")
	WriteResponse(w, http.StatusOK, response)
}
