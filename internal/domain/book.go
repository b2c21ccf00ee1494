package domain

import (
	"context"
	"time"
)

type Book struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"size:255;not null;index" json:"title"`
	Author        string    `gorm:"size:255;not null;index" json:"author"`
	PublishedYear int       `gorm:"not null" json:"publishedYear"`
	Genre         string    `gorm:"size:64;not null" json:"genre"`
	Stock         int       `gorm:"not null;check:stock >= 0" json:"stock"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return "books" }

// BookFilter holds one optional case-insensitive substring predicate per
// searchable column. Nil fields do not constrain the result.
type BookFilter struct {
	Title  *string
	Author *string
	Genre  *string
}

type BookPatch struct {
	Title         *string
	Author        *string
	PublishedYear *int
	Genre         *string
	Stock         *int
}

type BookRepository interface {
	Create(ctx context.Context, b *Book) error
	Find(ctx context.Context, f BookFilter) ([]Book, error)
	FindByID(ctx context.Context, id string) (*Book, error)
	// Update writes only the fields present in p and returns the stored
	// book, or nil if id does not exist.
	Update(ctx context.Context, id string, p BookPatch) (*Book, error)
	Delete(ctx context.Context, id string) (bool, error)
	// DecrementStock takes one copy only if stock > 0; false means nothing
	// changed (book missing or out of stock).
	DecrementStock(ctx context.Context, id string) (bool, error)
	IncrementStock(ctx context.Context, id string) (bool, error)
}
