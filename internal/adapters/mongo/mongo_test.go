package mongo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	mongoadapter "github.com/robertarktes/hotel-paradise/internal/adapters/mongo"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mongoContainer.Terminate(context.Background()) })

	host, err := mongoContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := mongoContainer.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatal(err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })
	return client.Database("hotel_test")
}

func TestDetailsRepository(t *testing.T) {
	ctx := context.Background()
	repo := mongoadapter.NewDetailsRepository(startMongo(t), observability.NewNopLogger())

	if _, err := repo.RoomDetails(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	details := domain.RoomDetails{
		RoomID:      1,
		Description: "Sea view",
		Beds:        "1 king",
		SizeSqm:     32,
		Amenities:   []string{"wifi", "minibar"},
	}
	if err := repo.UpsertRoomDetails(ctx, details); err != nil {
		t.Fatal(err)
	}
	details.Beds = "2 queen"
	if err := repo.UpsertRoomDetails(ctx, details); err != nil {
		t.Fatal(err)
	}

	got, err := repo.RoomDetails(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Beds != "2 queen" || len(got.Amenities) != 2 {
		t.Errorf("unexpected details %+v", got)
	}
}

func TestActivityLog_Recent(t *testing.T) {
	ctx := context.Background()
	log := mongoadapter.NewActivityLog(startMongo(t), observability.NewNopLogger())

	base := time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC)
	for i, status := range []domain.BookingStatus{domain.BookingConfirmed, domain.BookingCheckedIn, domain.BookingCancelled} {
		ev := domain.BookingEvent{
			Type:       domain.BookingEventType(status),
			BookingID:  uuid.New(),
			RoomID:     101,
			Status:     status,
			GuestName:  "Ada",
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := log.Record(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := log.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Status != domain.BookingCancelled || recent[1].Status != domain.BookingCheckedIn {
		t.Errorf("expected newest first, got %s then %s", recent[0].Status, recent[1].Status)
	}
}
