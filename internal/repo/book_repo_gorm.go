package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"library-api/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// likeEscaper neutralises LIKE metacharacters; '!' is used as the escape
// character because backslash means different things across drivers.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func containsFold(q *gorm.DB, column string, v *string) *gorm.DB {
	if v == nil {
		return q
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return q
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '!'", pattern)
}

func (r *BookRepo) Find(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	q := r.db.WithContext(ctx).Model(&domain.Book{})
	q = containsFold(q, "title", f.Title)
	q = containsFold(q, "author", f.Author)
	q = containsFold(q, "genre", f.Genre)

	books := []domain.Book{}
	if err := q.Order("title asc").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookRepo) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) Update(ctx context.Context, id string, p domain.BookPatch) (*domain.Book, error) {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Author != nil {
		m["author"] = *p.Author
	}
	if p.PublishedYear != nil {
		m["published_year"] = *p.PublishedYear
	}
	if p.Genre != nil {
		m["genre"] = *p.Genre
	}
	if p.Stock != nil {
		m["stock"] = *p.Stock
	}
	// column-wise update so a concurrent checkout's stock change survives an
	// edit that does not touch stock
	if len(m) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id).Updates(m).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *BookRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Book{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BookRepo) DecrementStock(ctx context.Context, id string) (bool, error) {
	return r.shiftStock(ctx, "stock - 1", "id = ? AND stock > 0", id)
}

func (r *BookRepo) IncrementStock(ctx context.Context, id string) (bool, error) {
	return r.shiftStock(ctx, "stock + 1", "id = ?", id)
}

func (r *BookRepo) shiftStock(ctx context.Context, expr, where string, args ...any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Book{}).
		Where(where, args...).
		Updates(map[string]any{
			"stock":      gorm.Expr(expr),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
