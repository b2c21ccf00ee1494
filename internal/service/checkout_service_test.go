package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"library-api/internal/domain"
	"library-api/internal/repo"
	"library-api/internal/service"
	"library-api/internal/testutil"
)

type checkoutDeps struct {
	db      *gorm.DB
	store   *repo.Store
	svc     *service.CheckoutService
	student *domain.User
}

func setupCheckout(t *testing.T) *checkoutDeps {
	t.Helper()
	db := testutil.NewSQLite(t)
	store := repo.NewStore(db)
	return &checkoutDeps{
		db:      db,
		store:   store,
		svc:     service.NewCheckoutService(store, nil, nil),
		student: testutil.SeedUser(t, db, "student@mail.com", domain.RoleStudent),
	}
}

func (d *checkoutDeps) stock(t *testing.T, bookID string) int {
	t.Helper()
	b, err := d.store.Books().FindByID(context.Background(), bookID)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.Stock
}

func (d *checkoutDeps) countCheckouts(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, d.db.Model(&domain.Checkout{}).Count(&n).Error)
	return n
}

func TestCheckoutDecrementsStock(t *testing.T) {
	d := setupCheckout(t)
	ctx := context.Background()
	b := testutil.SeedBook(t, d.db, "1984", 3)

	c, err := d.svc.Checkout(ctx, d.student.ID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, d.student.ID, c.UserID)
	assert.Equal(t, b.ID, c.BookID)
	assert.False(t, c.Returned)
	assert.Nil(t, c.ReturnDate)
	assert.WithinDuration(t, time.Now(), c.CheckoutDate, 5*time.Second)
	require.NotNil(t, c.Book)
	assert.Equal(t, "1984", c.Book.Title)
	assert.Equal(t, 2, c.Book.Stock)
	assert.Equal(t, 2, d.stock(t, b.ID))
}

func TestCheckoutOutOfStock(t *testing.T) {
	d := setupCheckout(t)
	b := testutil.SeedBook(t, d.db, "Empty", 0)

	_, err := d.svc.Checkout(context.Background(), d.student.ID, b.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "book is out of stock")
	assert.Equal(t, 0, d.stock(t, b.ID))
	assert.Zero(t, d.countCheckouts(t))
}

func TestCheckoutUnknownBook(t *testing.T) {
	d := setupCheckout(t)

	_, err := d.svc.Checkout(context.Background(), d.student.ID, "5f8d0d55b54764421b7156c9")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, d.countCheckouts(t))
}

func TestReturnRestoresStock(t *testing.T) {
	d := setupCheckout(t)
	ctx := context.Background()
	b := testutil.SeedBook(t, d.db, "Dune", 2)

	c, err := d.svc.Checkout(ctx, d.student.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, d.stock(t, b.ID))

	r, err := d.svc.Return(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, r.Returned)
	require.NotNil(t, r.ReturnDate)
	assert.Equal(t, 2, d.stock(t, b.ID))
	require.NotNil(t, r.Book)
	assert.Equal(t, 2, r.Book.Stock)
}

func TestReturnTwiceIsRejected(t *testing.T) {
	d := setupCheckout(t)
	ctx := context.Background()
	b := testutil.SeedBook(t, d.db, "Emma", 1)

	c, err := d.svc.Checkout(ctx, d.student.ID, b.ID)
	require.NoError(t, err)
	_, err = d.svc.Return(ctx, c.ID)
	require.NoError(t, err)

	_, err = d.svc.Return(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "book already returned")
	assert.Equal(t, 1, d.stock(t, b.ID), "stock must not be incremented twice")
}

func TestReturnUnknownCheckout(t *testing.T) {
	d := setupCheckout(t)

	_, err := d.svc.Return(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "checkout record not found")
}

func TestReturnAfterBookDeletedRollsBack(t *testing.T) {
	d := setupCheckout(t)
	ctx := context.Background()
	b := testutil.SeedBook(t, d.db, "Gone", 1)

	c, err := d.svc.Checkout(ctx, d.student.ID, b.ID)
	require.NoError(t, err)
	ok, err := d.store.Books().Delete(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = d.svc.Return(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "book not found")

	got, err := d.store.Checkouts().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.Returned)
	assert.Nil(t, got.ReturnDate)
}

func TestConcurrentCheckoutsOfLastCopy(t *testing.T) {
	d := setupCheckout(t)
	ctx := context.Background()
	b := testutil.SeedBook(t, d.db, "Last Copy", 1)

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.svc.Checkout(ctx, d.student.ID, b.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case domain.KindOf(err) == domain.KindConflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 0, d.stock(t, b.ID))
	assert.Equal(t, int64(1), d.countCheckouts(t))
}

func TestStockNeverNegativeAcrossSequence(t *testing.T) {
	d := setupCheckout(t)
	ctx := context.Background()
	b := testutil.SeedBook(t, d.db, "Cycle", 2)

	var open []string
	ops := []string{"out", "out", "out", "ret", "out", "ret", "ret", "ret", "out"}
	for _, op := range ops {
		switch op {
		case "out":
			c, err := d.svc.Checkout(ctx, d.student.ID, b.ID)
			if err == nil {
				open = append(open, c.ID)
			} else {
				require.ErrorIs(t, err, domain.ErrConflict)
			}
		case "ret":
			if len(open) == 0 {
				continue
			}
			_, err := d.svc.Return(ctx, open[0])
			require.NoError(t, err)
			open = open[1:]
		}
		s := d.stock(t, b.ID)
		assert.GreaterOrEqual(t, s, 0)
		assert.Equal(t, 2-len(open), s)
	}

	all, err := d.svc.ListAll(ctx)
	require.NoError(t, err)
	for _, c := range all {
		assert.Equal(t, c.Returned, c.ReturnDate != nil, "returned flag and date must agree")
	}
}

func TestListMineOnlyReturnsCallersCheckouts(t *testing.T) {
	d := setupCheckout(t)
	ctx := context.Background()
	other := testutil.SeedUser(t, d.db, "other@mail.com", domain.RoleStudent)
	b := testutil.SeedBook(t, d.db, "Shared", 5)

	_, err := d.svc.Checkout(ctx, d.student.ID, b.ID)
	require.NoError(t, err)
	_, err = d.svc.Checkout(ctx, other.ID, b.ID)
	require.NoError(t, err)

	mine, err := d.svc.ListMine(ctx, d.student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, d.student.ID, mine[0].UserID)
	require.NotNil(t, mine[0].Book)

	all, err := d.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
