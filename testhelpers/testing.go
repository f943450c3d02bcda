// Package testhelpers provides a migrated Postgres database for integration tests.
package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"dinepos/internal/models"
	"dinepos/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool     *pgxpool.Pool
	OutletID uuid.UUID
}

// SetupTestDB connects to TEST_DATABASE_URL and applies migrations. The test is skipped
// when the variable is unset. Rows created for the test outlet are removed on cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := database.Migrate(dsn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := database.NewPool(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool, OutletID: uuid.New()}
	t.Cleanup(func() {
		db.truncateOutlet()
		pool.Close()
	})
	return db
}

func (db *TestDB) truncateOutlet() {
	ctx := context.Background()
	for _, stmt := range []string{
		`DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE outlet_id = $1)`,
		`DELETE FROM orders WHERE outlet_id = $1`,
		`DELETE FROM inventory_logs WHERE outlet_id = $1`,
		`DELETE FROM inventory WHERE outlet_id = $1`,
		`DELETE FROM restaurant_tables WHERE outlet_id = $1`,
		`DELETE FROM items WHERE outlet_id = $1`,
		`DELETE FROM outlet_settings WHERE outlet_id = $1`,
		`DELETE FROM role_permissions WHERE outlet_id = $1`,
	} {
		_, _ = db.Pool.Exec(ctx, stmt, db.OutletID)
	}
}

// SeedTable inserts an EMPTY table for the test outlet.
func (db *TestDB) SeedTable(t *testing.T, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO restaurant_tables (id, outlet_id, name, status, capacity) VALUES ($1, $2, $3, $4, 4)`,
		id, db.OutletID, name, models.TableStatusEmpty)
	if err != nil {
		t.Fatalf("Failed to create test table: %v", err)
	}
	return id
}

// SeedItem inserts a FIXED price menu item with stock for the test outlet.
func (db *TestDB) SeedItem(t *testing.T, name string, price, stock int64) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	id := uuid.New()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO items (id, outlet_id, name, pricing_mode, price, is_available) VALUES ($1, $2, $3, $4, $5, TRUE)`,
		id, db.OutletID, name, models.PricingModeFixed, decimal.NewFromInt(price))
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO inventory (id, outlet_id, item_id, stock, low_stock_threshold) VALUES ($1, $2, $3, $4, 0)`,
		uuid.New(), db.OutletID, id, decimal.NewFromInt(stock))
	if err != nil {
		t.Fatalf("Failed to create test inventory: %v", err)
	}
	return id
}
