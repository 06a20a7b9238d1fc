package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := clock
	clock = func() time.Time { return at }
	t.Cleanup(func() { clock = prev })
}

func TestCreateSQLMigrationWritesValidTemplate(t *testing.T) {
	dir := t.TempDir()
	fixedClock(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))

	path, err := CreateSQLMigration(dir, "Add Rush Fees!")
	require.NoError(t, err)
	assert.Equal(t, "20260301093000_add_rush_fees.sql", filepath.Base(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), annotationUp))
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationStaysAfterNewestVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260401000000_future.sql"), []byte(annotationUp+"\n"+annotationDown+"\n"), 0o644))
	fixedClock(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	path, err := CreateSQLMigration(dir, "gang_run_limits")
	require.NoError(t, err)
	assert.Equal(t, "20260401000001_gang_run_limits.sql", filepath.Base(path))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "20260401000001_gang_run_limits.sql", migrations[1].Filename)
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), " !!! ")
	assert.Error(t, err)
	_, err = CreateSQLMigration("", "name")
	assert.Error(t, err)
}
