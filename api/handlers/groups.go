package handlers

import (
	"net/http"

	services "github.com/EO-DataHub/eodhp-user-sync/api/services"
)

// @Summary List groups
// @Description List every group with the number of linked users.
// @Tags groups
// @Produce json
// @Success 200 {object} models.GroupsResponse
// @Failure 401 {object} string
// @Failure 500 {object} models.ErrorResponse
// @Router /groups [get]
func GetGroups(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetGroupsService(svc, w, r)
	}
}

// @Summary List group members
// @Tags groups
// @Produce json
// @Param group-name path string true "Group name" example(DBCA_Users)
// @Success 200 {object} models.GroupMembersResponse
// @Failure 401 {object} string
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /groups/{group-name}/users [get]
func GetGroupMembers(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetGroupMembersService(svc, w, r)
	}
}

// @Summary Ensure configured groups exist
// @Description Create any configured group that is missing. Requires the hub_admin role.
// @Tags groups
// @Produce json
// @Success 200 {object} models.GroupCheckResponse
// @Failure 401 {object} string
// @Failure 403 {object} string
// @Failure 500 {object} models.GroupCheckResponse
// @Router /groups/check [post]
func CheckGroups(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CheckGroupsService(svc, w, r)
	}
}
