package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"library-api/internal/domain"
	"library-api/internal/repo"
	"library-api/internal/testutil"
	"library-api/pkg/utils"
)

func strp(s string) *string { return &s }

func TestBookFindFilters(t *testing.T) {
	db := testutil.NewSQLite(t)
	ctx := context.Background()
	books := repo.NewBookRepo(db)

	for _, b := range []domain.Book{
		{ID: utils.NewID(), Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", PublishedYear: 1925, Genre: "Classic", Stock: 2},
		{ID: utils.NewID(), Title: "1984", Author: "George Orwell", PublishedYear: 1949, Genre: "Dystopian", Stock: 3},
		{ID: utils.NewID(), Title: "Animal Farm", Author: "George Orwell", PublishedYear: 1945, Genre: "Political Satire", Stock: 1},
		{ID: utils.NewID(), Title: "100% Pure", Author: "Anon", PublishedYear: 2001, Genre: "Classic", Stock: 1},
	} {
		b := b
		require.NoError(t, books.Create(ctx, &b))
	}

	cases := []struct {
		name   string
		filter domain.BookFilter
		titles []string
	}{
		{"no filter", domain.BookFilter{}, []string{"100% Pure", "1984", "Animal Farm", "The Great Gatsby"}},
		{"author case-insensitive", domain.BookFilter{Author: strp("orwELL")}, []string{"1984", "Animal Farm"}},
		{"title substring", domain.BookFilter{Title: strp("gats")}, []string{"The Great Gatsby"}},
		{"predicates are and-ed", domain.BookFilter{Author: strp("orwell"), Genre: strp("satire")}, []string{"Animal Farm"}},
		{"percent is literal", domain.BookFilter{Title: strp("0%")}, []string{"100% Pure"}},
		{"underscore is literal", domain.BookFilter{Title: strp("_")}, nil},
		{"blank ignored", domain.BookFilter{Genre: strp("  ")}, []string{"100% Pure", "1984", "Animal Farm", "The Great Gatsby"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := books.Find(ctx, tc.filter)
			require.NoError(t, err)
			var titles []string
			for _, b := range got {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tc.titles, titles)
		})
	}
}

func TestBookStockUpdatesAreConditional(t *testing.T) {
	db := testutil.NewSQLite(t)
	ctx := context.Background()
	books := repo.NewBookRepo(db)
	b := testutil.SeedBook(t, db, "Dune", 1)

	ok, err := books.DecrementStock(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = books.DecrementStock(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, ok, "stock must not go below zero")

	got, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	ok, err = books.IncrementStock(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = books.IncrementStock(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookStockUpdatesTouchUpdatedAt(t *testing.T) {
	db := testutil.NewSQLite(t)
	ctx := context.Background()
	books := repo.NewBookRepo(db)
	b := testutil.SeedBook(t, db, "Emma", 2)

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&domain.Book{}).Where("id = ?", b.ID).UpdateColumn("updated_at", old).Error)

	ok, err := books.DecrementStock(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)
	got, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(old))

	require.NoError(t, db.Model(&domain.Book{}).Where("id = ?", b.ID).UpdateColumn("updated_at", old).Error)
	ok, err = books.IncrementStock(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)
	got, err = books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(old))
	assert.Equal(t, 2, got.Stock)
}

func TestBookFindByIDMissing(t *testing.T) {
	db := testutil.NewSQLite(t)
	got, err := repo.NewBookRepo(db).FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := testutil.NewSQLite(t)
	ctx := context.Background()
	users := repo.NewUserRepo(db)
	testutil.SeedUser(t, db, "dup@mail.com", domain.RoleStudent)

	err := users.Create(ctx, &domain.User{
		ID: utils.NewID(), FirstName: "A", LastName: "B",
		Email: "dup@mail.com", PasswordHash: "x", Role: domain.RoleStudent,
	})
	require.ErrorIs(t, err, repo.ErrDuplicateEmail)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCheckoutMarkReturnedOnce(t *testing.T) {
	db := testutil.NewSQLite(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "s@mail.com", domain.RoleStudent)
	b := testutil.SeedBook(t, db, "Emma", 1)
	checkouts := repo.NewCheckoutRepo(db)

	c := &domain.Checkout{ID: utils.NewID(), UserID: u.ID, BookID: b.ID, CheckoutDate: time.Now()}
	require.NoError(t, checkouts.Create(ctx, c))

	at := time.Now()
	ok, err := checkouts.MarkReturned(ctx, c.ID, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checkouts.MarkReturned(ctx, c.ID, at)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := checkouts.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Returned)
	require.NotNil(t, got.ReturnDate)
	require.NotNil(t, got.Book)
	assert.Equal(t, "Emma", got.Book.Title)

	mine, err := checkouts.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := checkouts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].User)
	assert.Equal(t, u.Email, all[0].User.Email)
}

func TestStoreTxRollsBack(t *testing.T) {
	db := testutil.NewSQLite(t)
	ctx := context.Background()
	store := repo.NewStore(db)
	b := testutil.SeedBook(t, db, "Ulysses", 2)
	boom := errors.New("boom")

	err := store.Tx(ctx, func(tx domain.Store) error {
		ok, err := tx.Books().DecrementStock(ctx, b.ID)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestRepoSurfacesDriverErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection reset"))

	_, err = repo.NewBookRepo(db).FindByID(context.Background(), "b1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
