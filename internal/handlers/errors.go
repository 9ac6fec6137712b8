package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
	"github.com/goldvault/investor-dashboard/backend/internal/shared"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the domain error taxonomy to HTTP statuses. Unknown
// errors become opaque 500s in production mode; internal detail is only logged.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error, production bool) {
	switch {
	case errors.Is(err, entities.ErrInvalidOrderShape),
		errors.Is(err, entities.ErrInsufficientBalance),
		errors.Is(err, entities.ErrIllegalTransition):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrOrderNotFound):
		writeJSONError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, entities.ErrZeroPriceRejected),
		errors.Is(err, entities.ErrUpstreamUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("unhandled error", "path", r.URL.Path, "error", err)
		if production && !shared.IsHTTPDebugMode() {
			writeJSONError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
