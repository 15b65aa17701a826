package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/hotel-paradise/internal/auth"
	"github.com/robertarktes/hotel-paradise/internal/domain"
)

func (r *Repository) GetAdmin(ctx context.Context, username string) (auth.Admin, error) {
	var a auth.Admin
	err := r.pool.QueryRow(ctx, `
		SELECT username, password_hash, name, email, role FROM admins WHERE username = $1
	`, username).Scan(&a.Username, &a.PasswordHash, &a.Name, &a.Email, &a.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Admin{}, errors.Wrapf(domain.ErrNotFound, "admin %q", username)
	}
	return a, err
}

func (r *Repository) UpsertAdmin(ctx context.Context, a auth.Admin) error {
	_, err := r.pool.Exec(ctx, `
		UPSERT INTO admins (username, password_hash, name, email, role) VALUES ($1, $2, $3, $4, $5)
	`, a.Username, a.PasswordHash, a.Name, a.Email, a.Role)
	return err
}
