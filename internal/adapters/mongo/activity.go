package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxActivities = 100

type ActivityLog struct {
	coll   *mongo.Collection
	logger observability.Logger
	now    func() time.Time
}

func NewActivityLog(db *mongo.Database, logger observability.Logger) *ActivityLog {
	return &ActivityLog{
		coll:   db.Collection("activities"),
		logger: logger,
		now:    time.Now,
	}
}

// Record appends the event to the feed.
func (a *ActivityLog) Record(ctx context.Context, ev domain.BookingEvent) error {
	entry := domain.Activity{
		ID:        uuid.New(),
		Type:      ev.Type,
		BookingID: ev.BookingID,
		RoomID:    ev.RoomID,
		Status:    ev.Status,
		Message:   describe(ev),
		At:        ev.OccurredAt,
	}
	if entry.At.IsZero() {
		entry.At = a.now().UTC()
	}
	_, err := a.coll.InsertOne(ctx, entry)
	if err != nil {
		a.logger.Error("failed to insert activity: ", err)
		return err
	}
	return nil
}

// Recent returns the latest limit entries, newest first.
func (a *ActivityLog) Recent(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit <= 0 || limit > maxActivities {
		limit = maxActivities
	}
	cur, err := a.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	activities := []domain.Activity{}
	if err := cur.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func describe(ev domain.BookingEvent) string {
	switch ev.Type {
	case domain.EventBookingCreated:
		return fmt.Sprintf("%s booked room %d for %s to %s", ev.GuestName, ev.RoomID, ev.CheckIn, ev.CheckOut)
	default:
		return fmt.Sprintf("booking for %s in room %d is now %s", ev.GuestName, ev.RoomID, ev.Status)
	}
}
