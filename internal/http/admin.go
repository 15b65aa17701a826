package http

import (
	"net/http"
	"strconv"

	"github.com/robertarktes/hotel-paradise/internal/domain"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	tok, admin, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		requestLogger(r).WithField("username", req.Username).Warn("admin login failed")
		writeError(w, r, err)
		return
	}
	requestLogger(r).WithField("username", admin.Username).Info("admin logged in")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      tok.Token,
		"token_type": "Bearer",
		"expires_at": tok.ExpiresAt,
		"admin": map[string]string{
			"username": admin.Username,
			"name":     admin.Name,
			"role":     admin.Role,
		},
	})
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	if err := h.bookings.CancelBooking(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.GetBooking(w, r)
}

func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	if err := h.bookings.CheckIn(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.GetBooking(w, r)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	day, ok := dateParam(w, r)
	if !ok {
		return
	}
	if day.IsZero() {
		day = h.dashboard.Today()
	}
	stats, err := h.dashboard.Stats(r.Context(), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStats(stats))
}

func (h *Handlers) AdminBookings(w http.ResponseWriter, r *http.Request) {
	day, ok := dateParam(w, r)
	if !ok {
		return
	}
	rows, err := h.dashboard.RecentBookings(r.Context(), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": toBookingRows(rows)})
}

func (h *Handlers) RoomStatus(w http.ResponseWriter, r *http.Request) {
	board, err := h.dashboard.RoomBoard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"date": h.dashboard.Today(), "rooms": board})
}

const maxActivities = 100

func (h *Handlers) Activities(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeProblem(w, r, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = min(n, maxActivities)
	}
	if h.activities == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"activities": []domain.Activity{}})
		return
	}
	acts, err := h.activities.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": acts})
}

func dateParam(w http.ResponseWriter, r *http.Request) (domain.Date, bool) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return domain.Date{}, true
	}
	day, err := domain.ParseDate(v)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
		return domain.Date{}, false
	}
	return day, true
}
