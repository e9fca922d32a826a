package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID       string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Store interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	Get(ctx context.Context, userID string) (User, error)
}

type PostgresRepository struct {
	store Store
}

func NewPostgresRepository(store Store) *PostgresRepository {
	return &PostgresRepository{store: store}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (User, error) {
	var u User
	row := r.store.QueryRow(ctx, `SELECT id, username, email FROM users WHERE id=$1`, userID)
	if err := row.Scan(&u.ID, &u.Username, &u.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}
