package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id INT8 PRIMARY KEY,
	name TEXT NOT NULL,
	room_type TEXT NOT NULL,
	price NUMERIC(10,2) NOT NULL CHECK (price > 0),
	capacity INT4 NOT NULL CHECK (capacity > 0),
	status TEXT NOT NULL CHECK (status IN ('available', 'maintenance', 'unavailable'))
);

CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	room_id INT8 NOT NULL REFERENCES rooms (id),
	guest_name TEXT NOT NULL,
	guest_email TEXT NOT NULL,
	guest_phone TEXT NOT NULL,
	check_in DATE NOT NULL,
	check_out DATE NOT NULL,
	adults INT4 NOT NULL CHECK (adults >= 1),
	children INT4 NOT NULL DEFAULT 0 CHECK (children >= 0),
	special_requests TEXT NOT NULL DEFAULT '',
	total_price NUMERIC(10,2) NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('confirmed', 'checked_in', 'cancelled', 'completed')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (check_out > check_in)
);

CREATE INDEX IF NOT EXISTS bookings_room_stay_idx ON bookings (room_id, check_in, check_out) WHERE status != 'cancelled';
CREATE INDEX IF NOT EXISTS bookings_created_idx ON bookings (created_at DESC);

CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type TEXT NOT NULL,
	payload_json JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ,
	status TEXT NOT NULL CHECK (status IN ('NEW', 'PUBLISHED', 'FAILED')),
	dedupe_key TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS outbox_new_idx ON outbox (created_at) WHERE status = 'NEW';

CREATE TABLE IF NOT EXISTS admins (
	username TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'admin'
);
`

// Migrate creates the tables the repository needs. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return errors.Wrap(err, "migrate schema")
}
