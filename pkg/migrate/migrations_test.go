package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected one %s migration", suffix)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestStockMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_products_and_stocks")

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS stocks",
		"product_id uuid NOT NULL UNIQUE",
		"CHECK (quantity >= 0)",
		"CHECK (type IN ('ADD', 'REMOVE', 'ADJUST'))",
		"DROP TABLE IF EXISTS stock_logs",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_orders")

	for _, sub := range []string{
		"CONSTRAINT orders_order_number_key UNIQUE (order_number)",
		"CHECK (status IN ('PENDING', 'COMPLETED', 'CANCELLED'))",
		"CHECK (currency IN ('USD', 'RIEL'))",
		"business_snapshot jsonb",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS orders",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := migrate.CreateSQLMigration(dir, "Add Table Zones!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_table_zones.sql"), path)
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "  !!  ")
	require.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))

	require.Error(t, migrate.ValidateDir(t.TempDir()))
}
