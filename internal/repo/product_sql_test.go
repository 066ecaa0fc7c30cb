package repo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rogerio-castellano/product-catalog/internal/db"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"github.com/stretchr/testify/require"
)

// These tests need a PostgreSQL database with db/schema.sql applied.
func databaseURL(t *testing.T) string {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	return dbURL
}

func TestPostgresProductRepository(t *testing.T) {
	database, err := db.Connect(context.Background(), databaseURL(t))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	truncate := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_, err := database.ExecContext(ctx, "TRUNCATE TABLE products RESTART IDENTITY")
		require.NoError(t, err)
	}
	truncate()
	t.Cleanup(truncate)

	testRepositoryContract(t, repo.NewPostgresProductRepository(database))
}

func TestGormProductRepository(t *testing.T) {
	gdb, err := db.OpenGorm(context.Background(), databaseURL(t))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	truncate := func() {
		require.NoError(t, gdb.Exec("TRUNCATE TABLE products RESTART IDENTITY").Error)
	}
	truncate()
	t.Cleanup(truncate)

	testRepositoryContract(t, repo.NewGormProductRepository(gdb))
}
