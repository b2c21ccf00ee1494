package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"library-api/internal/domain"
)

type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Users() domain.UserRepository         { return NewUserRepo(s.db) }
func (s *Store) Books() domain.BookRepository         { return NewBookRepo(s.db) }
func (s *Store) Checkouts() domain.CheckoutRepository { return NewCheckoutRepo(s.db) }

func (s *Store) Tx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func isDupKey(err error) bool {
	// string match instead of gorm.ErrDuplicatedKey: that needs TranslateError
	// and each driver words it differently
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
