package testutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pawpaw-commerce/fulfillment-go/internal/db"
)

// StartPostgres launches a throwaway Postgres container, applies the schema
// migrations, and returns a DSN. The container is terminated via t.Cleanup.
func StartPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "postgres", "POSTGRES_PASSWORD": "postgres", "POSTGRES_DB": "fulfillment"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { terminate(t, container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/fulfillment?sslmode=disable", host, mappedPort.Port())

	logger := log.New(io.Discard, "", log.LstdFlags)
	migrate(ctx, t, dsn, logger)

	return dsn
}

// migrate retries until Postgres accepts connections. The listening-port wait
// fires before the server finishes its first-boot restart.
func migrate(ctx context.Context, t *testing.T, dsn string, logger *log.Logger) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for {
		err := db.RunMigrations(dsn, logger)
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("apply migrations: %v", err)
		}
		select {
		case <-ctx.Done():
			t.Fatalf("context cancelled applying migrations: %v", ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func terminate(t *testing.T, c testcontainers.Container) {
	t.Helper()
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Terminate(terminateCtx); err != nil {
		t.Logf("terminate container: %v", err)
	}
}
