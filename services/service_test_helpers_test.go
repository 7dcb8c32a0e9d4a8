package services

import (
	"context"
	"log"
	"os"
	"testing"

	"ecotrackAPI/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL and
// applies the schema. Tests that need a live database skip when the
// variable is unset so the unit suite stays runnable anywhere.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if err := godotenv.Load("../.env"); err != nil {
		_ = godotenv.Load()
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database-backed test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}
	if err := database.Bootstrap(ctx, pool); err != nil {
		t.Fatalf("Failed to bootstrap schema: %v", err)
	}

	t.Cleanup(func() {
		cleanupTestData(pool)
		pool.Close()
	})

	return pool
}

func cleanupTestData(pool *pgxpool.Pool) {
	ctx := context.Background()
	for _, stmt := range []string{
		`DELETE FROM user_challenges WHERE user_id LIKE 'test-%'`,
		`DELETE FROM challenges WHERE category LIKE 'test-%'`,
		`DELETE FROM users WHERE email LIKE 'test%@example.com'`,
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Printf("Warning: failed to cleanup test data: %v", err)
		}
	}
}
