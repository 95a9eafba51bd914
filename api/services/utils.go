package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/lib/pq"
)

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}) {

	w.Header().Set("Content-Type", "application/json")

	// We don't want to cache API responses so the client receives most curent data
	w.Header().Set("Cache-Control", "max-age=0")

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	}
}

// HandleErrResponse writes err as an ErrorResponse, exposing the Postgres error code when there is one.
func HandleErrResponse(w http.ResponseWriter, statusCode int, err error) {
	var pqErr *pq.Error
	response := models.ErrorResponse{ErrorDetails: err.Error()}

	if errors.As(err, &pqErr) {
		response.ErrorCode = pqErr.Code.Name()
		response.ErrorDetails = pqErr.Message
	}

	WriteResponse(w, statusCode, response)
}
