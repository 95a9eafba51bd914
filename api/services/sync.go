package services

import (
	"context"
	"net/http"

	"github.com/EO-DataHub/eodhp-user-sync/api/middleware"
	"github.com/EO-DataHub/eodhp-user-sync/internal/authn"
	"github.com/rs/zerolog"
)

// SyncUsersService runs a roster synchronisation and returns its report.
// Failures have already been escalated to the administrators when the error response is written.
func SyncUsersService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	if claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims); ok {
		logger.Info().Str("requested_by", claims.Username).Msg("User sync requested")
	}

	// A disconnecting client does not abort the run
	report, err := svc.Sync.Sync(context.WithoutCancel(r.Context()))
	if err != nil {
		logger.Error().Err(err).Msg("User sync failed")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info().Int("created", report.Created).Int("updated", report.Updated).Msg("User sync completed")
	WriteResponse(w, http.StatusOK, report)
}
