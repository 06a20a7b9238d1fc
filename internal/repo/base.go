package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Bind returns a Base that issues statements on tx.
func (b Base) Bind(tx *gorm.DB) Base {
	return Base{db: tx}
}

// UpdateVersioned applies columns to the row of model identified by id only
// while its version column still equals expected, and bumps the version in the
// same statement. A false result means another writer got there first.
func (b Base) UpdateVersioned(ctx context.Context, model any, id uuid.UUID, expected int, columns map[string]any) (bool, error) {
	updates := make(map[string]any, len(columns)+1)
	for key, value := range columns {
		updates[key] = value
	}
	updates["version"] = gorm.Expr("version + 1")

	res := b.DB(ctx).
		Model(model).
		Where("id = ? AND version = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LockVersioned takes the row lock of model's row identified by id without
// changing it, provided its version still equals expected. Inside a
// transaction the lock holds until commit, so a concurrent UpdateVersioned on
// the same row waits and then sees the version it must match. A false result
// means the row has moved on.
func (b Base) LockVersioned(ctx context.Context, model any, id uuid.UUID, expected int) (bool, error) {
	res := b.DB(ctx).
		Model(model).
		Where("id = ? AND version = ?", id, expected).
		UpdateColumn("version", gorm.Expr("version"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
