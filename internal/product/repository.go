package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("product not found")

	// ErrInsufficientStock means the adjustment would drive available stock
	// below zero. The row is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Get(ctx context.Context, productID string) (Product, error)
	Upsert(ctx context.Context, p Product) error
	AdjustStock(ctx context.Context, productID string, delta int) (int, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, productID string) (Product, error) {
	var p Product
	row := r.pool.QueryRow(ctx, `SELECT id, name, price, available_stock FROM products WHERE id=$1`, productID)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.AvailableStock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products(id, name, price, available_stock)
		VALUES($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name=EXCLUDED.name, price=EXCLUDED.price, available_stock=EXCLUDED.available_stock, updated_at=now()
	`, p.ID, p.Name, p.Price, p.AvailableStock)
	return err
}

// AdjustStock moves available stock by delta in a single conditional write, so
// the never-below-zero guard holds even with consumer instances running in
// other processes. Returns the new stock on success, ErrInsufficientStock when
// the guard refuses the change, and ErrNotFound for an unknown product.
func (r *PostgresRepository) AdjustStock(ctx context.Context, productID string, delta int) (int, error) {
	var newStock int
	err := r.pool.QueryRow(ctx, `
		UPDATE products
		SET available_stock = available_stock + $2, updated_at=now()
		WHERE id=$1 AND available_stock + $2 >= 0
		RETURNING available_stock
	`, productID, delta).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// No row matched: tell a missing product apart from a refused adjustment.
	var exists bool
	if probeErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); probeErr != nil {
		return 0, probeErr
	}
	if !exists {
		return 0, ErrNotFound
	}
	return 0, ErrInsufficientStock
}
