package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/auth"
	"github.com/robertarktes/hotel-paradise/internal/booking"
	"github.com/robertarktes/hotel-paradise/internal/dashboard"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/shopspring/decimal"
)

type RoomDetailsSource interface {
	RoomDetails(ctx context.Context, roomID int64) (domain.RoomDetails, error)
}

type ActivityFeed interface {
	Recent(ctx context.Context, limit int) ([]domain.Activity, error)
}

// Checker reports whether a dependency is ready to serve traffic.
type Checker func(ctx context.Context) error

type Handlers struct {
	bookings   *booking.Service
	dashboard  *dashboard.Service
	auth       *auth.Authenticator
	details    RoomDetailsSource
	activities ActivityFeed
	checks     map[string]Checker
	validate   *validator.Validate
}

func NewHandlers(bookings *booking.Service, dash *dashboard.Service, authn *auth.Authenticator, details RoomDetailsSource, activities ActivityFeed, checks map[string]Checker) *Handlers {
	return &Handlers{
		bookings:   bookings,
		dashboard:  dash,
		auth:       authn,
		details:    details,
		activities: activities,
		checks:     checks,
		validate:   validator.New(),
	}
}

func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.RoomFilter{Status: domain.RoomAvailable, Type: q.Get("type")}
	if v := q.Get("min_capacity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeProblem(w, r, http.StatusBadRequest, "bad_request", "min_capacity must be a non-negative integer")
			return
		}
		filter.MinCapacity = n
	}
	if v := q.Get("max_price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil || !p.IsPositive() {
			writeProblem(w, r, http.StatusBadRequest, "bad_request", "max_price must be a positive amount")
			return
		}
		filter.MaxPrice = p
	}

	rooms, err := h.bookings.Rooms(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": toRooms(rooms)})
}

func (h *Handlers) FeaturedRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.bookings.FeaturedRooms(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": toRooms(rooms)})
}

func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	room, err := h.bookings.Room(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := roomDetailResponse{roomResponse: toRoom(room)}
	if h.details != nil {
		details, err := h.details.RoomDetails(r.Context(), id)
		switch {
		case err == nil:
			resp.Details = &details
		case errors.Is(err, domain.ErrNotFound):
		default:
			requestLogger(r).WithField("room_id", id).Warn("room details unavailable: ", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) Availability(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut, ok := stayParams(w, r)
	if !ok {
		return
	}
	adults, ok := intParam(w, r, "adults", 1)
	if !ok {
		return
	}
	children, ok := intParam(w, r, "children", 0)
	if !ok {
		return
	}

	rooms, err := h.bookings.Search(r.Context(), checkIn, checkOut, adults, children)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"check_in":  checkIn,
		"check_out": checkOut,
		"nights":    checkIn.DaysUntil(checkOut),
		"rooms":     toRooms(rooms),
	})
}

func (h *Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	checkIn, checkOut, ok := stayParams(w, r)
	if !ok {
		return
	}

	room, quote, err := h.bookings.Quote(r.Context(), id, checkIn, checkOut)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		RoomID:       room.ID,
		RoomName:     room.Name,
		Price:        money(room.Price),
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Nights:       quote.Nights,
		Subtotal:     money(quote.Subtotal),
		TaxesAndFees: money(quote.TaxesAndFees),
		Total:        money(quote.Total),
	})
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := booking.CreateBookingInput{
		RoomID:   req.RoomID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guest: domain.Guest{
			Name:  req.guestName(),
			Email: req.Email,
			Phone: req.Phone,
		},
		Adults:          1,
		SpecialRequests: req.SpecialRequests,
	}
	if req.Adults != nil {
		in.Adults = *req.Adults
	}
	if req.Children != nil {
		in.Children = *req.Children
	}

	b, err := h.bookings.CreateBooking(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBooking(b))
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	b, err := h.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBooking(b))
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "failed": failed})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

// decode reads a JSON body into v and runs its validate tags.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "bad_request", "malformed JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			writeProblem(w, r, http.StatusBadRequest, "bad_request", "invalid fields: "+strings.Join(fields, ", "))
			return false
		}
		writeError(w, r, err)
		return false
	}
	return true
}

func roomID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, r, http.StatusBadRequest, "bad_request", "invalid room id")
		return 0, false
	}
	return id, true
}

func bookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "bad_request", "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}

func stayParams(w http.ResponseWriter, r *http.Request) (domain.Date, domain.Date, bool) {
	q := r.URL.Query()
	checkIn, err := domain.ParseDate(q.Get("check_in"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, string(booking.KindInvalidRange), "check_in must be YYYY-MM-DD")
		return domain.Date{}, domain.Date{}, false
	}
	checkOut, err := domain.ParseDate(q.Get("check_out"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, string(booking.KindInvalidRange), "check_out must be YYYY-MM-DD")
		return domain.Date{}, domain.Date{}, false
	}
	return checkIn, checkOut, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, string(booking.KindInvalidCapacity), name+" must be an integer")
		return 0, false
	}
	return n, true
}
