package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/penblog/penblog/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// DatabaseURL returns DATABASE_URL when set. Otherwise it starts a
// throwaway Postgres container, or skips the test if Docker is unavailable.
func DatabaseURL(t testing.TB) string {
	t.Helper()
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	if os.Getenv("PENBLOG_NO_CONTAINERS") != "" {
		t.Skip("DATABASE_URL not set and containers disabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "penblog",
			"POSTGRES_PASSWORD": "penblog",
			"POSTGRES_DB":       "penblog",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	return fmt.Sprintf("postgres://penblog:penblog@%s:%s/penblog?sslmode=disable", host, port.Port())
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema applies every down migration newest first, then every up
// migration oldest first.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downs, err := filepath.Glob(filepath.Join(root, "migrations", "*.down.sql"))
	if err != nil {
		return fmt.Errorf("list down migrations: %w", err)
	}
	ups, err := filepath.Glob(filepath.Join(root, "migrations", "*.up.sql"))
	if err != nil {
		return fmt.Errorf("list up migrations: %w", err)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(downs)))
	sort.Strings(ups)

	for _, path := range append(downs, ups...) {
		if err := applyMigration(ctx, pool, path); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with a unique email. The password hash is a
// placeholder; hash a real password when the test logs in.
func NewTestUser(t testing.TB, firstName string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := ulid.Make().String()
	return &model.User{
		ID:           id,
		FirstName:    firstName,
		LastName:     "Tester",
		Email:        strings.ToLower(firstName+"-"+id) + "@example.com",
		PasswordHash: "$argon2id$placeholder",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestArticle creates a draft article owned by authorID.
func NewTestArticle(t testing.TB, authorID, title string) *model.Article {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.NewArticle(ulid.Make().String(), authorID, title, "", "a short test body", nil, now)
}

// UniqueTitle generates a unique article title for tests.
func UniqueTitle(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}
