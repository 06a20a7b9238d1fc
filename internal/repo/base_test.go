package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type versionedRow struct {
	ID      uuid.UUID `gorm:"type:text;primaryKey"`
	Name    string
	Version int
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&versionedRow{}))
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, db, base.DB(nil))
}

func TestBaseBindSwapsConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		bound := base.Bind(tx)
		assert.Same(t, tx, bound.DB(nil))
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, db, base.DB(nil))
}

func TestUpdateVersioned(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	ctx := context.Background()

	row := versionedRow{ID: uuid.New(), Name: "Business cards", Version: 1}
	require.NoError(t, db.Create(&row).Error)

	ok, err := base.UpdateVersioned(ctx, &versionedRow{}, row.ID, 1, map[string]any{"name": "Flyers"})
	require.NoError(t, err)
	assert.True(t, ok)

	var stored versionedRow
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, "Flyers", stored.Name)
	assert.Equal(t, 2, stored.Version)

	ok, err = base.UpdateVersioned(ctx, &versionedRow{}, row.ID, 1, map[string]any{"name": "Posters"})
	require.NoError(t, err)
	assert.False(t, ok, "stale version must not apply")

	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, "Flyers", stored.Name)
	assert.Equal(t, 2, stored.Version)
}

func TestLockVersioned(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	ctx := context.Background()

	row := versionedRow{ID: uuid.New(), Name: "Business cards", Version: 2}
	require.NoError(t, db.Create(&row).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		ok, err := base.Bind(tx).LockVersioned(ctx, &versionedRow{}, row.ID, 2)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = base.Bind(tx).LockVersioned(ctx, &versionedRow{}, row.ID, 1)
		require.NoError(t, err)
		assert.False(t, ok, "stale version must not lock")
		return nil
	})
	require.NoError(t, err)

	var stored versionedRow
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, 2, stored.Version, "locking must not bump the version")
	assert.Equal(t, "Business cards", stored.Name)
}
