package booking

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/robertarktes/hotel-paradise/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	defaultStorageTimeout = 3 * time.Second
	defaultLookupLimit    = 8
)

var tracer = otel.Tracer("booking")

// Engine answers availability questions against the catalog and ledger.
type Engine struct {
	catalog     Catalog
	ledger      Ledger
	timeout     time.Duration
	lookupLimit int
}

func NewEngine(catalog Catalog, ledger Ledger, storageTimeout time.Duration) *Engine {
	if storageTimeout <= 0 {
		storageTimeout = defaultStorageTimeout
	}
	return &Engine{
		catalog:     catalog,
		ledger:      ledger,
		timeout:     storageTimeout,
		lookupLimit: defaultLookupLimit,
	}
}

// FindAvailable returns rooms that are in service, seat requiredCapacity
// guests and have no active booking overlapping [checkIn, checkOut). Rooms
// are ordered by price, then id.
func (e *Engine) FindAvailable(ctx context.Context, checkIn, checkOut domain.Date, requiredCapacity int) (_ []domain.Room, err error) {
	ctx, span := tracer.Start(ctx, "booking.FindAvailable", trace.WithAttributes(
		attribute.String("check_in", checkIn.String()),
		attribute.String("check_out", checkOut.String()),
		attribute.Int("capacity", requiredCapacity),
	))
	defer func() { endSpan(span, err) }()

	if err := validateRange(checkIn, checkOut); err != nil {
		return nil, err
	}
	if requiredCapacity < 1 {
		return nil, newError(KindInvalidCapacity, "required capacity must be at least 1, got %d", requiredCapacity)
	}

	filter := domain.RoomFilter{Status: domain.RoomAvailable, MinCapacity: requiredCapacity}
	rooms, err := e.listRooms(ctx, filter)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if filter.Match(room) {
			candidates = append(candidates, room)
		}
	}

	stay := domain.NewStay(checkIn, checkOut)
	free := make([]bool, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.lookupLimit)
	for i, room := range candidates {
		g.Go(func() error {
			ok, err := e.roomFree(gctx, room.ID, stay)
			if err != nil {
				return err
			}
			free[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	available := make([]domain.Room, 0, len(candidates))
	for i, room := range candidates {
		if free[i] {
			available = append(available, room)
		}
	}
	slices.SortFunc(available, func(a, b domain.Room) int {
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	span.SetAttributes(attribute.Int("rooms", len(available)))
	return available, nil
}

// IsRoomAvailable reports whether roomID has no active booking overlapping
// [checkIn, checkOut). Room status is not consulted.
func (e *Engine) IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut domain.Date) (_ bool, err error) {
	ctx, span := tracer.Start(ctx, "booking.IsRoomAvailable", trace.WithAttributes(
		attribute.Int64("room_id", roomID),
	))
	defer func() { endSpan(span, err) }()

	if err := validateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	return e.roomFree(ctx, roomID, domain.NewStay(checkIn, checkOut))
}

func (e *Engine) roomFree(ctx context.Context, roomID int64, stay domain.Stay) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	booked, err := e.ledger.ListActiveBookingsForRoom(ctx, roomID)
	if err != nil {
		return false, StorageError("list bookings", err)
	}
	for _, b := range booked {
		if b.Overlaps(stay) {
			return false, nil
		}
	}
	return true, nil
}

func (e *Engine) listRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rooms, err := e.catalog.ListRooms(ctx, filter)
	if err != nil {
		return nil, StorageError("list rooms", err)
	}
	return rooms, nil
}

func validateRange(checkIn, checkOut domain.Date) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return newError(KindInvalidRange, "check-in and check-out dates are required")
	}
	if !checkIn.Before(checkOut) {
		return newError(KindInvalidRange, "check-out %s must be after check-in %s", checkOut, checkIn)
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
