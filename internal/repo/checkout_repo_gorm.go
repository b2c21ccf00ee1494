package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-api/internal/domain"
)

type CheckoutRepo struct{ db *gorm.DB }

func NewCheckoutRepo(db *gorm.DB) *CheckoutRepo { return &CheckoutRepo{db: db} }

func (r *CheckoutRepo) Create(ctx context.Context, c *domain.Checkout) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *CheckoutRepo) FindByID(ctx context.Context, id string) (*domain.Checkout, error) {
	var c domain.Checkout
	err := r.db.WithContext(ctx).Preload("Book").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CheckoutRepo) ListAll(ctx context.Context) ([]domain.Checkout, error) {
	out := []domain.Checkout{}
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Book").
		Order("checkout_date desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CheckoutRepo) ListByUser(ctx context.Context, userID string) ([]domain.Checkout, error) {
	out := []domain.Checkout{}
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("checkout_date desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkReturned flips an unreturned checkout to returned; false means the
// checkout is missing or was already returned.
func (r *CheckoutRepo) MarkReturned(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Checkout{}).
		Where("id = ? AND returned = ?", id, false).
		Updates(map[string]any{
			"returned":    true,
			"return_date": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
