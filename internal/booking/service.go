package booking

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CreateBookingInput is what a guest submits to reserve a room.
type CreateBookingInput struct {
	RoomID          int64
	CheckIn         domain.Date
	CheckOut        domain.Date
	Guest           domain.Guest
	Adults          int
	Children        int
	SpecialRequests string
}

type guestFields struct {
	Name            string `validate:"required,max=200"`
	Email           string `validate:"required,email,max=254"`
	Phone           string `validate:"required,min=7,max=32"`
	SpecialRequests string `validate:"max=1000"`
}

const featuredRooms = 3

type Option func(*Service)

// WithClock replaces the wall clock used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the venue time zone that dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithStorageTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// Service is the booking orchestrator: it composes the availability engine
// and the pricing calculator to commit and cancel reservations.
type Service struct {
	catalog  Catalog
	ledger   Ledger
	engine   *Engine
	pricing  *Calculator
	logger   observability.Logger
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
	timeout  time.Duration
}

func NewService(catalog Catalog, ledger Ledger, pricing *Calculator, logger observability.Logger, opts ...Option) *Service {
	s := &Service{
		catalog:  catalog,
		ledger:   ledger,
		pricing:  pricing,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
		loc:      time.Local,
		timeout:  defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = NewEngine(catalog, ledger, s.timeout)
	return s
}

func (s *Service) Engine() *Engine { return s.engine }

func (s *Service) Pricing() *Calculator { return s.pricing }

// Today is the current calendar day at the venue.
func (s *Service) Today() domain.Date {
	return domain.DateOf(s.now().In(s.loc))
}

// Search is the guest-facing availability search: it rejects stays that
// start in the past and sizes the room for adults plus children.
func (s *Service) Search(ctx context.Context, checkIn, checkOut domain.Date, adults, children int) ([]domain.Room, error) {
	if err := s.validateStay(checkIn, checkOut); err != nil {
		return nil, err
	}
	if err := validateParty(adults, children); err != nil {
		return nil, err
	}
	return s.engine.FindAvailable(ctx, checkIn, checkOut, adults+children)
}

func (s *Service) Room(ctx context.Context, id int64) (domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	room, err := s.catalog.GetRoom(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Room{}, newError(KindNotFound, "room %d not found", id)
	}
	if err != nil {
		return domain.Room{}, StorageError("get room", err)
	}
	return room, nil
}

func (s *Service) Rooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rooms, err := s.catalog.ListRooms(ctx, filter)
	if err != nil {
		return nil, StorageError("list rooms", err)
	}
	return rooms, nil
}

// FeaturedRooms returns the most expensive available rooms, highest price
// first.
func (s *Service) FeaturedRooms(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.Rooms(ctx, domain.RoomFilter{Status: domain.RoomAvailable})
	if err != nil {
		return nil, err
	}
	slices.Reverse(rooms)
	if len(rooms) > featuredRooms {
		rooms = rooms[:featuredRooms]
	}
	return rooms, nil
}

// Quote prices a stay in a room without reserving it.
func (s *Service) Quote(ctx context.Context, roomID int64, checkIn, checkOut domain.Date) (domain.Room, domain.Quote, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return domain.Room{}, domain.Quote{}, err
	}
	room, err := s.Room(ctx, roomID)
	if err != nil {
		return domain.Room{}, domain.Quote{}, err
	}
	quote, err := s.pricing.Quote(room, checkIn, checkOut)
	if err != nil {
		return domain.Room{}, domain.Quote{}, err
	}
	return room, quote, nil
}

func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (_ domain.Booking, err error) {
	ctx, span := tracer.Start(ctx, "booking.CreateBooking", trace.WithAttributes(
		attribute.Int64("room_id", in.RoomID),
		attribute.String("check_in", in.CheckIn.String()),
		attribute.String("check_out", in.CheckOut.String()),
	))
	defer func() { endSpan(span, err) }()

	log := s.logger.WithFields(map[string]interface{}{
		"room_id":   in.RoomID,
		"check_in":  in.CheckIn.String(),
		"check_out": in.CheckOut.String(),
	})

	if err := s.validateStay(in.CheckIn, in.CheckOut); err != nil {
		return domain.Booking{}, err
	}
	if err := validateParty(in.Adults, in.Children); err != nil {
		return domain.Booking{}, err
	}
	guest := domain.Guest{
		Name:  strings.TrimSpace(in.Guest.Name),
		Email: strings.TrimSpace(in.Guest.Email),
		Phone: strings.TrimSpace(in.Guest.Phone),
	}
	if err := s.validateGuest(guest, in.SpecialRequests); err != nil {
		return domain.Booking{}, err
	}

	room, err := s.Room(ctx, in.RoomID)
	if err != nil {
		return domain.Booking{}, err
	}
	if room.Status != domain.RoomAvailable {
		return domain.Booking{}, newError(KindRoomUnavailable, "room %d is %s", room.ID, room.Status)
	}
	if guests := in.Adults + in.Children; guests > room.Capacity {
		return domain.Booking{}, newError(KindCapacityExceeded, "room %d sleeps %d, party of %d", room.ID, room.Capacity, guests)
	}

	free, err := s.engine.IsRoomAvailable(ctx, room.ID, in.CheckIn, in.CheckOut)
	if err != nil {
		return domain.Booking{}, err
	}
	if !free {
		return domain.Booking{}, newError(KindRoomUnavailable, "room %d is booked for %s..%s", room.ID, in.CheckIn, in.CheckOut)
	}

	quote, err := s.pricing.Quote(room, in.CheckIn, in.CheckOut)
	if err != nil {
		return domain.Booking{}, err
	}

	b := domain.Booking{
		ID:              uuid.New(),
		RoomID:          room.ID,
		Guest:           guest,
		Stay:            domain.NewStay(in.CheckIn, in.CheckOut),
		Adults:          in.Adults,
		Children:        in.Children,
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		TotalPrice:      quote.Total,
		Status:          domain.BookingConfirmed,
		CreatedAt:       s.now().UTC(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	saved, err := s.ledger.InsertBooking(insertCtx, b)
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrSerializationFailure) {
		observability.BookingConflicts.Inc()
		log.Warn("room taken between availability check and insert")
		return domain.Booking{}, wrapError(KindRoomUnavailable, err, "room %d was booked concurrently", room.ID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Booking{}, newError(KindNotFound, "room %d not found", room.ID)
	}
	if err != nil {
		return domain.Booking{}, StorageError("insert booking", err)
	}

	observability.BookingsCreated.Inc()
	log.WithField("booking_id", saved.ID.String()).Info("booking confirmed")
	return saved, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b, err := s.ledger.GetBooking(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Booking{}, newError(KindNotFound, "booking %s not found", id)
	}
	if err != nil {
		return domain.Booking{}, StorageError("get booking", err)
	}
	return b, nil
}

// CancelBooking cancels a booking. Cancelling an already cancelled booking
// succeeds; completed stays cannot be cancelled.
func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "booking.CancelBooking", trace.WithAttributes(
		attribute.String("booking_id", id.String()),
	))
	defer func() { endSpan(span, err) }()

	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	switch b.Status {
	case domain.BookingCancelled:
		return nil
	case domain.BookingCompleted:
		return newError(KindInvalidState, "booking %s is already completed", id)
	}
	err = s.setStatus(ctx, id, b.Status, domain.BookingCancelled)
	if errors.Is(err, ErrInvalidState) && s.statusIs(ctx, id, domain.BookingCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.WithField("booking_id", id.String()).Info("booking cancelled")
	return nil
}

// CheckIn marks a confirmed booking as checked in on a day inside its stay.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) error {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	switch b.Status {
	case domain.BookingCheckedIn:
		return nil
	case domain.BookingConfirmed:
	default:
		return newError(KindInvalidState, "booking %s is %s", id, b.Status)
	}
	if today := s.Today(); !b.Stay.Covers(today) {
		return newError(KindInvalidState, "booking %s cannot check in on %s", id, today)
	}
	err = s.setStatus(ctx, id, domain.BookingConfirmed, domain.BookingCheckedIn)
	if errors.Is(err, ErrInvalidState) && s.statusIs(ctx, id, domain.BookingCheckedIn) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.WithField("booking_id", id.String()).Info("guest checked in")
	return nil
}

// CompleteStays closes every stay whose check-out day has arrived.
func (s *Service) CompleteStays(ctx context.Context) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.ledger.CompleteStays(ctx, s.Today())
	if err != nil {
		return nil, StorageError("complete stays", err)
	}
	observability.BookingStatusChanges.WithLabelValues(string(domain.BookingCompleted)).Add(float64(len(ids)))
	return ids, nil
}

// setStatus moves the booking from the status it was read in to status. If
// another writer changed it in between, the write is refused as InvalidState.
func (s *Service) setStatus(ctx context.Context, id uuid.UUID, from, status domain.BookingStatus) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.ledger.UpdateBookingStatus(ctx, id, []domain.BookingStatus{from}, status)
	if errors.Is(err, domain.ErrNotFound) {
		return newError(KindNotFound, "booking %s not found", id)
	}
	if errors.Is(err, domain.ErrConflict) {
		return wrapError(KindInvalidState, err, "booking %s is no longer %s", id, from)
	}
	if err != nil {
		return StorageError("update booking status", err)
	}
	observability.BookingStatusChanges.WithLabelValues(string(status)).Inc()
	return nil
}

func (s *Service) statusIs(ctx context.Context, id uuid.UUID, status domain.BookingStatus) bool {
	b, err := s.GetBooking(ctx, id)
	return err == nil && b.Status == status
}

func (s *Service) validateStay(checkIn, checkOut domain.Date) error {
	if err := validateRange(checkIn, checkOut); err != nil {
		return err
	}
	if today := s.Today(); checkIn.Before(today) {
		return newError(KindInvalidRange, "check-in %s is in the past", checkIn)
	}
	return nil
}

func (s *Service) validateGuest(g domain.Guest, specialRequests string) error {
	err := s.validate.Struct(guestFields{
		Name:            g.Name,
		Email:           g.Email,
		Phone:           g.Phone,
		SpecialRequests: specialRequests,
	})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
		}
		return newError(KindInvalidGuest, "invalid guest fields: %s", strings.Join(fields, ", "))
	}
	if err != nil {
		return wrapError(KindInvalidGuest, err, "validate guest")
	}
	return nil
}

func validateParty(adults, children int) error {
	if adults < 1 {
		return newError(KindInvalidCapacity, "at least one adult is required, got %d", adults)
	}
	if children < 0 {
		return newError(KindInvalidCapacity, "children cannot be negative, got %d", children)
	}
	return nil
}
