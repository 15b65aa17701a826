package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/hotel-paradise/internal/adapters/crdb"
	mailadapter "github.com/robertarktes/hotel-paradise/internal/adapters/mail"
	mongoadapter "github.com/robertarktes/hotel-paradise/internal/adapters/mongo"
	"github.com/robertarktes/hotel-paradise/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/hotel-paradise/internal/adapters/redis"
	"github.com/robertarktes/hotel-paradise/internal/auth"
	"github.com/robertarktes/hotel-paradise/internal/booking"
	"github.com/robertarktes/hotel-paradise/internal/dashboard"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	httphandler "github.com/robertarktes/hotel-paradise/internal/http"
	"github.com/robertarktes/hotel-paradise/internal/idempotency"
	"github.com/robertarktes/hotel-paradise/internal/notify"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"github.com/robertarktes/hotel-paradise/internal/outbox"
	"github.com/robertarktes/hotel-paradise/internal/rateLimit"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const jwtSecret = "integration-secret-0123456789abcdef"

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) string {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatal(err)
	}
	return host + ":" + mapped.Port()
}

func TestIntegration_SearchBookCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	crdbAddr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "cockroachdb/cockroach:v24.1.1",
		Cmd:          []string{"start-single-node", "--insecure"},
		ExposedPorts: []string{"26257/tcp", "8080/tcp"},
		WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
	}, "26257/tcp")
	mongoAddr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	}, "27017/tcp")
	redisAddr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
	}, "6379/tcp")
	rabbitAddr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-management",
		ExposedPorts: []string{"5672/tcp", "15672/tcp"},
		WaitingFor:   wait.ForHTTP("/api/health/checks/alarms").WithPort("15672").WithBasicAuth("guest", "guest"),
	}, "5672/tcp")

	logger := observability.NewLogger("hotel-integration", "info")

	pool, err := pgxpool.New(ctx, "postgresql://root@"+crdbAddr+"/defaultdb?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	if err := crdb.Migrate(ctx, pool); err != nil {
		t.Fatal(err)
	}
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+mongoAddr))
	if err != nil {
		t.Fatal(err)
	}
	defer mongoClient.Disconnect(ctx)
	mongoDB := mongoClient.Database("hotel_it")
	details := mongoadapter.NewDetailsRepository(mongoDB, logger)
	activities := mongoadapter.NewActivityLog(mongoDB, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: redisAddr})
	defer redisClient.Close()
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), time.Hour)
	rl := rateLimit.NewRateLimiter(redisadapter.NewCounter(redisClient))

	rabbitConn, err := amqp.Dial("amqp://guest:guest@" + rabbitAddr + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer rabbitConn.Close()
	rabbitPub, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		t.Fatal(err)
	}
	consumer, err := rabbit.NewConsumer(rabbitConn, "hotel.notifications.it", "booking.*")
	if err != nil {
		t.Fatal(err)
	}

	// Seed catalog and an admin.
	room := domain.Room{ID: 101, Name: "Ocean Deluxe", Type: "deluxe", Price: decimal.RequireFromString("100.00"), Capacity: 2, Status: domain.RoomAvailable}
	if err := repo.UpsertRoom(ctx, room); err != nil {
		t.Fatal(err)
	}
	if err := details.UpsertRoomDetails(ctx, domain.RoomDetails{RoomID: 101, Description: "Sea view", Beds: "1 king", SizeSqm: 35}); err != nil {
		t.Fatal(err)
	}
	hash, err := auth.HashPassword("front-desk-pass")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertAdmin(ctx, auth.Admin{Username: "frontdesk", PasswordHash: hash, Name: "Front Desk", Role: auth.RoleAdmin}); err != nil {
		t.Fatal(err)
	}

	authn, err := auth.NewAuthenticator(repo, jwtSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	bookings := booking.NewService(repo, repo, booking.NewCalculator(decimal.RequireFromString("0.10")), logger,
		booking.WithLocation(time.UTC), booking.WithStorageTimeout(5*time.Second))
	handlers := httphandler.NewHandlers(bookings, dashboard.NewService(repo, time.UTC, 5*time.Second), authn, details, activities, nil)
	srv := httptest.NewServer(httphandler.SetupRouter(handlers, httphandler.RouterConfig{
		Logger:             logger,
		Auth:               authn,
		RateLimiter:        rl,
		RateLimitPerMinute: 1000,
		Idempotency:        idemp,
	}))
	defer srv.Close()

	call := func(method, path string, body interface{}, headers map[string]string, want int) map[string]interface{} {
		t.Helper()
		var payload []byte
		if body != nil {
			payload, _ = json.Marshal(body)
		}
		req, _ := http.NewRequest(method, srv.URL+path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var out map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&out)
		if resp.StatusCode != want {
			t.Fatalf("%s %s: expected %d, got %d %v", method, path, want, resp.StatusCode, out)
		}
		return out
	}

	checkIn := domain.DateOf(time.Now().UTC()).AddDays(10)
	checkOut := checkIn.AddDays(3)
	stay := "check_in=" + checkIn.String() + "&check_out=" + checkOut.String()

	avail := call("GET", "/api/v1/availability?"+stay+"&adults=2", nil, nil, http.StatusOK)
	if rooms := avail["rooms"].([]interface{}); len(rooms) != 1 {
		t.Fatalf("expected room 101 available, got %v", rooms)
	}

	roomResp := call("GET", "/api/v1/rooms/101", nil, nil, http.StatusOK)
	if d, ok := roomResp["details"].(map[string]interface{}); !ok || d["beds"] != "1 king" {
		t.Errorf("expected room details, got %v", roomResp)
	}

	quote := call("GET", "/api/v1/rooms/101/quote?"+stay, nil, nil, http.StatusOK)
	if quote["total"] != "330.00" {
		t.Errorf("expected total 330.00, got %v", quote["total"])
	}

	reqBody := map[string]interface{}{
		"room_id": 101, "check_in": checkIn.String(), "check_out": checkOut.String(),
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "phone": "+44 20 7946 0000", "adults": 2,
	}
	key := map[string]string{"Idempotency-Key": uuid.New().String()}
	created := call("POST", "/api/v1/bookings", reqBody, key, http.StatusCreated)
	replayed := call("POST", "/api/v1/bookings", reqBody, key, http.StatusCreated)
	if created["id"] != replayed["id"] {
		t.Errorf("replay returned a different booking: %v vs %v", created["id"], replayed["id"])
	}
	call("POST", "/api/v1/bookings", reqBody, map[string]string{"Idempotency-Key": uuid.New().String()}, http.StatusConflict)

	login := call("POST", "/api/v1/admin/login", map[string]string{"username": "frontdesk", "password": "front-desk-pass"}, nil, http.StatusOK)
	bearer := map[string]string{"Authorization": "Bearer " + login["token"].(string)}
	cancelled := call("POST", "/api/v1/admin/bookings/"+created["id"].(string)+"/cancel", nil, bearer, http.StatusOK)
	if cancelled["status"] != "cancelled" {
		t.Errorf("expected cancelled, got %v", cancelled["status"])
	}
	call("GET", "/api/v1/availability?"+stay, nil, nil, http.StatusOK)

	// Outbox -> RabbitMQ -> notifier -> activity feed.
	publisher := outbox.NewPublisher(repo, rabbitPub, logger, time.Second, 10)
	n, err := publisher.Flush(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected created and cancelled events, published %d", n)
	}

	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	deliveries, err := consumer.Consume(runCtx)
	if err != nil {
		t.Fatal(err)
	}
	go notify.NewNotifier(activities, nil, mailadapter.Notifies, logger).Run(runCtx, deliveries)

	for {
		feed, err := activities.Recent(ctx, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(feed) == 2 {
			if feed[0].Status != domain.BookingCancelled {
				t.Errorf("expected newest activity to be the cancellation, got %+v", feed[0])
			}
			break
		}
		select {
		case <-runCtx.Done():
			t.Fatalf("activity feed has %d entries, expected 2", len(feed))
		case <-time.After(200 * time.Millisecond):
		}
	}
}
