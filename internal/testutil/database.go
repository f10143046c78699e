package testutil

import (
	"testing"

	"salli-go/internal/database"
	"salli-go/internal/database/migrations"
	"salli-go/internal/salli"
)

// NewTestDatabase creates a new in-memory ledger with migrations applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T, clock salli.Clock) *database.SQLiteDatabase {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, clock)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
