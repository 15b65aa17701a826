package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DetailsRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewDetailsRepository(db *mongo.Database, logger observability.Logger) *DetailsRepository {
	return &DetailsRepository{
		coll:   db.Collection("room_details"),
		logger: logger,
	}
}

func (d *DetailsRepository) RoomDetails(ctx context.Context, roomID int64) (domain.RoomDetails, error) {
	var details domain.RoomDetails
	err := d.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&details)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.RoomDetails{}, errors.Wrapf(domain.ErrNotFound, "details for room %d", roomID)
	}
	if err != nil {
		d.logger.WithField("room_id", roomID).Error("failed to get room details: ", err)
		return domain.RoomDetails{}, err
	}
	return details, nil
}

func (d *DetailsRepository) UpsertRoomDetails(ctx context.Context, details domain.RoomDetails) error {
	_, err := d.coll.ReplaceOne(ctx, bson.M{"_id": details.RoomID}, details, options.Replace().SetUpsert(true))
	if err != nil {
		d.logger.WithField("room_id", details.RoomID).Error("failed to upsert room details: ", err)
		return err
	}
	return nil
}
