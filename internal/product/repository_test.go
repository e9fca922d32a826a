package product

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`SELECT id, name, price, available_stock FROM products`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "available_stock"}).
			AddRow("p1", "Wireless Mouse", 25.99, 7))

	p, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "p1" || p.Name != "Wireless Mouse" || p.AvailableStock != 7 {
		t.Fatalf("unexpected product: %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`SELECT id, name, price, available_stock FROM products`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(ctx, "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`UPDATE products`).
		WithArgs("p1", -5).
		WillReturnRows(pgxmock.NewRows([]string{"available_stock"}).AddRow(7))

	newStock, err := repo.AdjustStock(ctx, "p1", -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newStock != 7 {
		t.Fatalf("newStock=%d want 7", newStock)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdjustStockInsufficient(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	// The guarded update matches no row, the probe says the product exists.
	mock.ExpectQuery(`UPDATE products`).
		WithArgs("p1", -5).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repo.AdjustStock(ctx, "p1", -5)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err=%v want ErrInsufficientStock", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`UPDATE products`).
		WithArgs("ghost", -1).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.AdjustStock(ctx, "ghost", -1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}
