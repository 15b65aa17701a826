package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/shopspring/decimal"
)

const roomColumns = `id, name, room_type, price::STRING, capacity, status`

func (r *Repository) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	room, err := scanRoom(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Room{}, errors.Wrapf(domain.ErrNotFound, "room %d", id)
	}
	return room, err
}

func (r *Repository) ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	var maxPrice *string
	if !filter.MaxPrice.IsZero() {
		p := filter.MaxPrice.String()
		maxPrice = &p
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+roomColumns+` FROM rooms
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR room_type = $2)
		  AND capacity >= $3
		  AND ($4::STRING IS NULL OR price <= $4::STRING::DECIMAL)
		ORDER BY price, id
	`, string(filter.Status), filter.Type, filter.MinCapacity, maxPrice)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// UpsertRoom seeds or replaces a room row.
func (r *Repository) UpsertRoom(ctx context.Context, room domain.Room) error {
	_, err := r.pool.Exec(ctx, `
		UPSERT INTO rooms (id, name, room_type, price, capacity, status)
		VALUES ($1, $2, $3, $4::STRING::DECIMAL, $5, $6)
	`, room.ID, room.Name, room.Type, room.Price.String(), room.Capacity, string(room.Status))
	return err
}

func scanRoom(row pgx.Row) (domain.Room, error) {
	var (
		room   domain.Room
		price  string
		status string
	)
	if err := row.Scan(&room.ID, &room.Name, &room.Type, &price, &room.Capacity, &status); err != nil {
		return domain.Room{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Room{}, errors.Wrapf(err, "room %d price", room.ID)
	}
	room.Price = p
	room.Status = domain.RoomStatus(status)
	return room, nil
}
