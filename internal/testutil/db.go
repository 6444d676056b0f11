// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"testing"

	"connectsphere/config"
	"connectsphere/internal/model"
	"connectsphere/pkg/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	orm, err := db.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := orm.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return orm
}
