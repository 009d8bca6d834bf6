//go:build integration

package dbtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"chairtime/internal/infra/db"
	"chairtime/internal/pkg/config"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresOnce      sync.Once
	postgresContainer testcontainers.Container

	testUser     = "test"
	testPassword = "testpass"
)

// NewTestPool starts the shared postgres container once, creates a fresh
// database for the calling test package, and applies db/schema.sql.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	startPostgresOnce(t)
	host, port := containerHostPort(t)

	dbName := "testdb_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, host, port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "admin connection failed")
	defer adminPool.Close()

	_, err = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()

		cleanupPool, err := pgxpool.New(cleanupCtx, adminDSN)
		if err != nil {
			return
		}
		defer cleanupPool.Close()
		_, _ = cleanupPool.Exec(cleanupCtx, "DROP DATABASE IF EXISTS "+dbName)
	})

	pool, cleanup, err := db.Connect(config.DBConfig{
		Host:     host,
		Port:     port.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   dbName,
		SSLMode:  "disable",
	})
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(cleanup)

	applySchema(t, pool)
	return pool
}

func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	// Resolve the schema file relative to possible working dirs (package
	// dirs during `go test`).
	schemaFile := filepath.Join("db", "schema.sql")
	candidates := []string{
		schemaFile,
		filepath.Join("..", schemaFile),
		filepath.Join("..", "..", schemaFile),
		filepath.Join("..", "..", "..", schemaFile),
	}

	var (
		content []byte
		readErr error
	)
	for _, cand := range candidates {
		content, readErr = os.ReadFile(cand)
		if readErr == nil {
			break
		}
	}
	require.NoError(t, readErr, "db/schema.sql not found from test working directory")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, string(content))
	require.NoError(t, err, "failed to apply schema")
}

func startPostgresOnce(t *testing.T) {
	t.Helper()

	postgresOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=512m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "max_connections=200",
				"-c", "log_statement=none",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					testUser, testPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
			Name:   "postgres-integration",
			Labels: map[string]string{"purpose": "integration-tests"},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()

		var err error
		postgresContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err, "failed to start postgres container")

		t.Cleanup(func() {
			if postgresContainer != nil {
				termCtx, termCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer termCancel()
				_ = postgresContainer.Terminate(termCtx)
			}
		})
	})
}

func containerHostPort(t *testing.T) (string, nat.Port) {
	t.Helper()

	ctx := context.Background()
	mappedPort, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err, "failed to resolve container port")
	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err, "failed to resolve container host")
	return host, mappedPort
}
