// Package testutil starts the throwaway containers used by integration tests.
package testutil

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgImage    = "pgvector/pgvector:0.8.1-pg18"
	pgUser     = "resumechat"
	pgPassword = "resumechat"
	pgDatabase = "resumechat"

	rustfsImage = "rustfs/rustfs:latest"
	// RustFSAccessKey and RustFSSecretKey are the static credentials of the
	// RustFS container.
	RustFSAccessKey = "rustfsadmin"
	RustFSSecretKey = "rustfsadmin"
)

// PostgresContainer is a running pgvector-enabled PostgreSQL.
type PostgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewPostgresContainer starts PostgreSQL with the pgvector extension available.
// The container is terminated when the test finishes.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()
	c, host, port := start(ctx, t, testcontainers.ContainerRequest{
		Image:        pgImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		},
		// postgres logs readiness twice: once for the init server, once for the real one
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	})
	return &PostgresContainer{Container: c, Host: host, Port: port}
}

// ConnectionString returns a DSN for the container's database.
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pgUser, pgPassword, pc.Host, pc.Port, pgDatabase)
}

// RustFSContainer is a running S3-compatible object store.
type RustFSContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewRustFSContainer starts RustFS. The container is terminated when the
// test finishes.
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	t.Helper()
	c, host, port := start(ctx, t, testcontainers.ContainerRequest{
		Image:        rustfsImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": RustFSAccessKey,
			"RUSTFS_SECRET_KEY": RustFSSecretKey,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	})
	return &RustFSContainer{Container: c, Host: host, Port: port}
}

// Endpoint returns the S3 endpoint URL.
func (rc *RustFSContainer) Endpoint() string {
	return fmt.Sprintf("http://%s:%s", rc.Host, rc.Port)
}

// NewTestPool connects to pc, retrying while the server finishes starting,
// then applies the schema with migrate. The pool is closed when the test
// finishes.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrate func(databaseURL string) error) *pgxpool.Pool {
	t.Helper()
	dsn := pc.ConnectionString()

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	pool, err := backoff.RetryWithData(func() (*pgxpool.Pool, error) {
		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, err
		}
		return p, nil
	}, policy)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if migrate != nil {
		if err := migrate(dsn); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}
	return pool
}

func start(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest) (testcontainers.Container, string, string) {
	t.Helper()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c); err != nil {
			t.Logf("failed to terminate %s: %v", req.Image, err)
		}
	})

	// Endpoint resolves the first exposed port
	endpoint, err := c.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get %s endpoint: %v", req.Image, err)
	}
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		t.Fatalf("failed to parse %s endpoint %q: %v", req.Image, endpoint, err)
	}
	return c, host, port
}
