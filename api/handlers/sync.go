package handlers

import (
	"net/http"

	services "github.com/EO-DataHub/eodhp-user-sync/api/services"
)

// @Summary Synchronise users from the roster
// @Description Fetch the user roster, create or update local users and link them to the linkage group. Administrators are emailed on failure. Requires the hub_admin role.
// @Tags users
// @Produce json
// @Success 200 {object} models.SyncReport
// @Failure 401 {object} string
// @Failure 403 {object} string
// @Failure 500 {object} models.ErrorResponse
// @Router /users/sync [post]
func SyncUsers(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.SyncUsersService(svc, w, r)
	}
}
