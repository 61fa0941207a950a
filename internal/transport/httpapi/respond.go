package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nctrack/internal/bootstrap/logging"
	domainnc "nctrack/internal/domain/nc"
	"nctrack/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the domain taxonomy to status codes: validation 400,
// not found 404, anything else a logged 500 with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domainnc.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domainnc.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Non-conformance not found"})
	default:
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
