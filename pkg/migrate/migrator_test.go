package migrate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101000000_create_zones.sql":       {Data: []byte("-- +goose Up\nCREATE TABLE zones (id INTEGER PRIMARY KEY);\n\n-- +goose Down\nDROP TABLE zones;\n")},
		"20260102000000_create_zone_tables.sql": {Data: []byte("-- +goose Up\nCREATE TABLE zone_tables (zone_id INTEGER NOT NULL, number INTEGER NOT NULL);\n\n-- +goose Down\nDROP TABLE zone_tables;\n")},
	}
}

func newSQLiteMigrator(t *testing.T) *Migrator {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := newMigrator(goose.DialectSQLite3, sqlDB, sqliteMigrations())
	require.NoError(t, err)
	return m
}

func TestMigratorUpStatusAndTo(t *testing.T) {
	ctx := context.Background()
	m := newSQLiteMigrator(t)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20260102000000, version)

	require.NoError(t, m.To(ctx, "20260101000000"))
	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)

	require.NoError(t, m.To(ctx, "20260102000000"))
	version, err = m.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20260102000000, version)

	require.Error(t, m.To(ctx, "latest"))
}

func TestEmbeddedSourceMatchesDisk(t *testing.T) {
	embeddedFS, err := Source("")
	require.NoError(t, err)
	require.NoError(t, ValidateFS(embeddedFS))

	onDisk, err := os.ReadDir("migrations")
	require.NoError(t, err)
	inBinary, err := fsReadDirNames(embeddedFS)
	require.NoError(t, err)
	assert.Len(t, inBinary, len(onDisk))

	_, err = Source(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestNextVersionStaysAheadOfExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20990101000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	version, err := nextVersion(dir, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 20990101000001, version)

	empty := t.TempDir()
	version, err = nextVersion(empty, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 20261019120000, version)
}

func TestCheckAnnotations(t *testing.T) {
	assert.NoError(t, checkAnnotations("ok.sql", "-- +goose Up\n-- +goose StatementBegin\n-- +goose StatementEnd\n-- +goose Down\n"))
	assert.Error(t, checkAnnotations("no_up.sql", "-- +goose Down\n"))
	assert.Error(t, checkAnnotations("reversed.sql", "-- +goose Down\n-- +goose Up\n"))
	assert.Error(t, checkAnnotations("unbalanced.sql", "-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n"))
}

func fsReadDirNames(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
