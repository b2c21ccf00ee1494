// Package seed loads the default accounts and a starter catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"library-api/internal/domain"
	"library-api/internal/repo"
	"library-api/internal/service"
)

// DefaultPassword is shared by the seeded accounts; change it after the
// first login.
const DefaultPassword = "password123"

type Result struct {
	Users int
	Books int
}

func stock(n int) *int { return &n }

var users = []service.CreateUserInput{
	{FirstName: "Librarian", LastName: "Role", Email: "librarian@mail.com", Password: DefaultPassword, Role: domain.RoleLibrarian},
	{FirstName: "Student", LastName: "Role", Email: "student@mail.com", Password: DefaultPassword, Role: domain.RoleStudent},
}

var books = []service.CreateBookInput{
	{Title: "To Kill a Mockingbird", Author: "Harper Lee", PublishedYear: 1960, Genre: "Fiction", Stock: stock(5)},
	{Title: "1984", Author: "George Orwell", PublishedYear: 1949, Genre: "Dystopian", Stock: stock(3)},
	{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", PublishedYear: 1925, Genre: "Classic", Stock: stock(2)},
	{Title: "Pride and Prejudice", Author: "Jane Austen", PublishedYear: 1813, Genre: "Romance", Stock: stock(4)},
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", PublishedYear: 1937, Genre: "Fantasy", Stock: stock(7)},
}

// Run inserts whatever is missing: accounts are matched by email, books by
// title. With reset set, checkouts, books and users are wiped first.
func Run(ctx context.Context, db *gorm.DB, reset bool) (Result, error) {
	if reset {
		if err := wipe(ctx, db); err != nil {
			return Result{}, err
		}
	}

	store := repo.NewStore(db)
	us := service.NewUserService(store)
	bs := service.NewBookService(store, nil, 0)

	var res Result
	for _, u := range users {
		_, err := us.Create(ctx, u)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		res.Users++
	}

	for _, b := range books {
		title := b.Title
		existing, err := bs.List(ctx, domain.BookFilter{Title: &title})
		if err != nil {
			return res, fmt.Errorf("seed book %q: %w", b.Title, err)
		}
		if hasTitle(existing, b.Title) {
			continue
		}
		if _, err := bs.Create(ctx, b); err != nil {
			return res, fmt.Errorf("seed book %q: %w", b.Title, err)
		}
		res.Books++
	}
	return res, nil
}

func hasTitle(bs []domain.Book, title string) bool {
	for _, b := range bs {
		if strings.EqualFold(b.Title, title) {
			return true
		}
	}
	return false
}

func wipe(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{&domain.Checkout{}, &domain.Book{}, &domain.User{}} {
			if err := all.Delete(m).Error; err != nil {
				return fmt.Errorf("wipe: %w", err)
			}
		}
		return nil
	})
}
