package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robertarktes/hotel-paradise/internal/auth"
	"github.com/robertarktes/hotel-paradise/internal/booking"
	"github.com/robertarktes/hotel-paradise/internal/idempotency"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

var kindStatus = map[booking.Kind]int{
	booking.KindInvalidRange:       http.StatusBadRequest,
	booking.KindInvalidCapacity:    http.StatusBadRequest,
	booking.KindInvalidGuest:       http.StatusBadRequest,
	booking.KindCapacityExceeded:   http.StatusUnprocessableEntity,
	booking.KindRoomUnavailable:    http.StatusConflict,
	booking.KindNotFound:           http.StatusNotFound,
	booking.KindInvalidState:       http.StatusConflict,
	booking.KindStorageUnavailable: http.StatusServiceUnavailable,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg, RequestID: middleware.GetReqID(r.Context())})
}

// writeError maps engine, auth and idempotency failures to HTTP statuses.
// Anything unclassified is logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var berr *booking.Error
	switch {
	case errors.As(err, &berr):
		status, ok := kindStatus[berr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status >= 500 {
			requestLogger(r).Error("booking request failed: ", err)
		}
		writeProblem(w, r, status, string(berr.Kind), berr.Message)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeProblem(w, r, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		writeProblem(w, r, http.StatusUnauthorized, "invalid_token", "missing or invalid bearer token")
	case errors.Is(err, idempotency.ErrInFlight):
		writeProblem(w, r, http.StatusConflict, "request_in_progress", err.Error())
	case errors.Is(err, idempotency.ErrMismatch):
		writeProblem(w, r, http.StatusUnprocessableEntity, "idempotency_key_reused", err.Error())
	default:
		requestLogger(r).Error("request failed: ", err)
		writeProblem(w, r, http.StatusInternalServerError, "internal", "internal error")
	}
}
