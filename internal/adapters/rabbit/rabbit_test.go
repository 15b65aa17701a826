package rabbit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/hotel-paradise/internal/adapters/rabbit"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRabbit(t *testing.T) *amqp.Connection {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	rabbitContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-management",
			ExposedPorts: []string{"5672/tcp", "15672/tcp"},
			WaitingFor:   wait.ForHTTP("/api/health/checks/alarms").WithPort("15672").WithBasicAuth("guest", "guest"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rabbitContainer.Terminate(context.Background()) })

	host, err := rabbitContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := rabbitContainer.MappedPort(ctx, "5672")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := amqp.Dial(fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPublisher_ConfirmedDeliveryToBoundQueue(t *testing.T) {
	conn := startRabbit(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	consumer, err := rabbit.NewConsumer(conn, "test.notifications", "booking.*")
	if err != nil {
		t.Fatal(err)
	}
	defer consumer.Close()
	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		t.Fatal(err)
	}

	pub, err := rabbit.NewPublisher(conn)
	if err != nil {
		t.Fatal(err)
	}
	defer pub.Close()

	for _, key := range []string{"booking.created", "room.updated", "booking.cancelled"} {
		err := pub.Publish(ctx, key, amqp.Publishing{MessageId: key + ":1", Body: []byte(`{}`)})
		if err != nil {
			t.Fatalf("publish %s: %v", key, err)
		}
	}

	var got []string
	for len(got) < 2 {
		select {
		case d := <-deliveries:
			got = append(got, d.RoutingKey)
			d.Ack(false)
		case <-ctx.Done():
			t.Fatalf("timed out, received %v", got)
		}
	}
	if got[0] != "booking.created" || got[1] != "booking.cancelled" {
		t.Errorf("expected booking events in order, got %v", got)
	}
}
