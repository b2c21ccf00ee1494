package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"library-api/internal/core/cache"
	"library-api/internal/domain"
	"library-api/pkg/utils"
)

type CheckoutService struct {
	store domain.Store
	cache *cache.Cache
	log   *zap.Logger
	now   func() time.Time
}

func NewCheckoutService(store domain.Store, c *cache.Cache, l *zap.Logger) *CheckoutService {
	if l == nil {
		l = zap.NewNop()
	}
	return &CheckoutService{store: store, cache: c, log: l, now: time.Now}
}

// Checkout lends one copy of bookID to userID. The stock decrement and the
// ledger insert commit together; the conditional decrement makes sure only
// one of several concurrent callers can take the last copy.
func (s *CheckoutService) Checkout(ctx context.Context, userID, bookID string) (out *domain.Checkout, err error) {
	defer func() { observe("checkout", err) }()

	err = s.store.Tx(ctx, func(tx domain.Store) error {
		ok, err := tx.Books().DecrementStock(ctx, bookID)
		if err != nil {
			return domain.Internal("update stock failed", err)
		}
		if !ok {
			b, err := tx.Books().FindByID(ctx, bookID)
			if err != nil {
				return domain.Internal("find book failed", err)
			}
			if b == nil {
				return domain.NotFound("book not found")
			}
			return domain.Conflict("book is out of stock")
		}

		c := &domain.Checkout{
			ID:           utils.NewID(),
			UserID:       userID,
			BookID:       bookID,
			CheckoutDate: s.now(),
		}
		if err := tx.Checkouts().Create(ctx, c); err != nil {
			return domain.Internal("create checkout failed", err)
		}
		b, err := tx.Books().FindByID(ctx, bookID)
		if err != nil {
			return domain.Internal("find book failed", err)
		}
		c.Book = b
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.BookKey(bookID))
	s.log.Info("book checked out",
		zap.String("checkoutId", out.ID),
		zap.String("userId", userID),
		zap.String("bookId", bookID),
	)
	return out, nil
}

// Return closes an open checkout and puts the copy back into stock. A
// checkout that is already returned is rejected, never silently accepted.
func (s *CheckoutService) Return(ctx context.Context, checkoutID string) (out *domain.Checkout, err error) {
	defer func() { observe("return", err) }()

	err = s.store.Tx(ctx, func(tx domain.Store) error {
		ok, err := tx.Checkouts().MarkReturned(ctx, checkoutID, s.now())
		if err != nil {
			return domain.Internal("mark returned failed", err)
		}
		c, err := tx.Checkouts().FindByID(ctx, checkoutID)
		if err != nil {
			return domain.Internal("find checkout failed", err)
		}
		if c == nil {
			return domain.NotFound("checkout record not found")
		}
		if !ok {
			return domain.Conflict("book already returned")
		}

		ok, err = tx.Books().IncrementStock(ctx, c.BookID)
		if err != nil {
			return domain.Internal("update stock failed", err)
		}
		if !ok {
			return domain.NotFound("book not found")
		}
		if c.Book != nil {
			c.Book.Stock++
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.BookKey(out.BookID))
	s.log.Info("book returned",
		zap.String("checkoutId", out.ID),
		zap.String("bookId", out.BookID),
	)
	return out, nil
}

func (s *CheckoutService) ListAll(ctx context.Context) ([]domain.Checkout, error) {
	out, err := s.store.Checkouts().ListAll(ctx)
	if err != nil {
		return nil, domain.Internal("list checkouts failed", err)
	}
	return out, nil
}

func (s *CheckoutService) ListMine(ctx context.Context, userID string) ([]domain.Checkout, error) {
	out, err := s.store.Checkouts().ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal("list checkouts failed", err)
	}
	return out, nil
}
