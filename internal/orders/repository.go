package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner matches the transaction entry point on *pgxpool.Pool.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
}

type PostgresRepository struct {
	pool TxBeginner
}

func NewPostgresRepository(pool TxBeginner) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists the order header and its line items in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, total_amount, created_at)
		VALUES($1, $2, $3, $4)
	`, o.ID, o.UserID, o.TotalAmount, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity, price)
			VALUES($1, $2, $3, $4)
		`, o.ID, it.ProductID, it.Quantity, it.Price)
		if err != nil {
			return fmt.Errorf("insert order item %s/%s: %w", o.ID, it.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order %s: %w", o.ID, err)
	}
	return nil
}
