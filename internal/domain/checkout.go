package domain

import (
	"context"
	"time"
)

// Checkout links one user to one borrowed copy of a book. Returned and
// ReturnDate change together, exactly once.
type Checkout struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	UserID       string     `gorm:"size:36;not null;index" json:"userId"`
	BookID       string     `gorm:"size:36;not null;index" json:"bookId"`
	CheckoutDate time.Time  `gorm:"not null" json:"checkoutDate"`
	ReturnDate   *time.Time `json:"returnDate"`
	Returned     bool       `gorm:"not null;default:false" json:"returned"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Checkout) TableName() string { return "checkouts" }

type CheckoutRepository interface {
	Create(ctx context.Context, c *Checkout) error
	FindByID(ctx context.Context, id string) (*Checkout, error)
	ListAll(ctx context.Context) ([]Checkout, error)
	ListByUser(ctx context.Context, userID string) ([]Checkout, error)
	MarkReturned(ctx context.Context, id string, at time.Time) (bool, error)
}
