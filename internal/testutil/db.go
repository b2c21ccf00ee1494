// Package testutil opens throwaway databases and seeds fixtures for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"library-api/internal/core/database"
	"library-api/internal/domain"
	"library-api/pkg/utils"
)

// NewSQLite returns a migrated SQLite database in t's temp dir. A single
// connection serialises transactions the way a row lock would on postgres.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "library.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func SeedBook(t testing.TB, db *gorm.DB, title string, stock int) *domain.Book {
	t.Helper()
	b := &domain.Book{
		ID:            utils.NewID(),
		Title:         title,
		Author:        "Test Author",
		PublishedYear: 1999,
		Genre:         "Fiction",
		Stock:         stock,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func SeedUser(t testing.TB, db *gorm.DB, email string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	u := &domain.User{
		ID:           utils.NewID(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
