package service

import (
	"context"
	"strings"
	"time"

	"library-api/internal/core/cache"
	"library-api/internal/domain"
	"library-api/pkg/utils"
)

type CreateBookInput struct {
	Title         string
	Author        string
	PublishedYear int
	Genre         string
	Stock         *int // nil means one copy
}

type BookService struct {
	store domain.Store
	cache *cache.Cache
	ttl   time.Duration
}

func NewBookService(store domain.Store, c *cache.Cache, ttl time.Duration) *BookService {
	return &BookService{store: store, cache: c, ttl: ttl}
}

func (s *BookService) List(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	out, err := s.store.Books().Find(ctx, f)
	if err != nil {
		return nil, domain.Internal("list books failed", err)
	}
	return out, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	b, err := cache.GetOrLoadJSON(s.cache, ctx, cache.BookKey(id), s.ttl, func(ctx context.Context) (*domain.Book, error) {
		b, err := s.store.Books().FindByID(ctx, id)
		if err != nil {
			return nil, domain.Internal("find book failed", err)
		}
		if b == nil {
			return nil, domain.NotFound("book not found")
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("book not found")
	}
	return b, nil
}

func (s *BookService) Create(ctx context.Context, in CreateBookInput) (*domain.Book, error) {
	stock := 1
	if in.Stock != nil {
		stock = *in.Stock
	}
	if stock < 0 {
		return nil, domain.Validation("stock must be a positive number")
	}
	b := &domain.Book{
		ID:            utils.NewID(),
		Title:         strings.TrimSpace(in.Title),
		Author:        strings.TrimSpace(in.Author),
		PublishedYear: in.PublishedYear,
		Genre:         strings.TrimSpace(in.Genre),
		Stock:         stock,
	}
	if err := s.store.Books().Create(ctx, b); err != nil {
		return nil, domain.Internal("create book failed", err)
	}
	return b, nil
}

// Update applies only the fields present in p.
func (s *BookService) Update(ctx context.Context, id string, p domain.BookPatch) (*domain.Book, error) {
	if p.Stock != nil && *p.Stock < 0 {
		return nil, domain.Validation("stock must be a positive number")
	}
	p.Title = trimmed(p.Title)
	p.Author = trimmed(p.Author)
	p.Genre = trimmed(p.Genre)

	b, err := s.store.Books().Update(ctx, id, p)
	if err != nil {
		return nil, domain.Internal("update book failed", err)
	}
	if b == nil {
		return nil, domain.NotFound("book not found")
	}
	s.cache.Invalidate(ctx, cache.BookKey(id))
	return b, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Books().Delete(ctx, id)
	if err != nil {
		return domain.Internal("delete book failed", err)
	}
	if !ok {
		return domain.NotFound("book not found")
	}
	s.cache.Invalidate(ctx, cache.BookKey(id))
	return nil
}
