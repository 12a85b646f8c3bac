package book

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/platform/paging"
	"libraryapi/internal/testutil"
)

func newSQLiteRepo(t *testing.T) (*SQLiteRepo, int64) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	authorID := testutil.InsertAuthor(t, db.SQL, "Ursula K. Le Guin")
	return NewSQLiteRepo(db.SQL), authorID
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func idPtr(i int64) *int64    { return &i }

func TestSQLiteRepo_CreateAndGet(t *testing.T) {
	repo, authorID := newSQLiteRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, NewBook{
		Title:             "The Dispossessed",
		Genre:             strPtr("Science Fiction"),
		YearOfPublication: intPtr(1974),
		AuthorID:          idPtr(authorID),
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestSQLiteRepo_CreateWithoutOptionalFields(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, NewBook{Title: "Untitled Draft"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Draft", got.Title)
	assert.Nil(t, got.Genre)
	assert.Nil(t, got.YearOfPublication)
	assert.Nil(t, got.AuthorID)
}

func TestSQLiteRepo_CreateUnknownAuthor(t *testing.T) {
	repo, _ := newSQLiteRepo(t)

	_, err := repo.Create(context.Background(), NewBook{Title: "Orphan", AuthorID: idPtr(9999)})
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestSQLiteRepo_GetMissing(t *testing.T) {
	repo, _ := newSQLiteRepo(t)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepo_List(t *testing.T) {
	repo, authorID := newSQLiteRepo(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		genre := "Fantasy"
		if i%2 == 0 {
			genre = "fantasy"
		}
		_, err := repo.Create(ctx, NewBook{
			Title:    fmt.Sprintf("Book %d", i),
			Genre:    strPtr(genre),
			AuthorID: idPtr(authorID),
		})
		require.NoError(t, err)
	}
	// Books without an author never show up in listings.
	_, err := repo.Create(ctx, NewBook{Title: "No Author", Genre: strPtr("Fantasy")})
	require.NoError(t, err)

	t.Run("first page", func(t *testing.T) {
		items, total, err := repo.List(ctx, ListQuery{Limit: 2, Offset: 0})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, items, 2)
		assert.Equal(t, "Book 1", items[0].Title)
		assert.Equal(t, "Book 2", items[1].Title)
		assert.Equal(t, "Ursula K. Le Guin", items[0].Author)
	})

	t.Run("last partial page", func(t *testing.T) {
		items, total, err := repo.List(ctx, ListQuery{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, items, 1)
		assert.Equal(t, "Book 5", items[0].Title)
	})

	t.Run("past the end", func(t *testing.T) {
		items, total, err := repo.List(ctx, ListQuery{Limit: 2, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("negative offset is past the end", func(t *testing.T) {
		items, total, err := repo.List(ctx, ListQuery{Limit: 2, Offset: -20})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, items)
	})

	t.Run("huge page through the service", func(t *testing.T) {
		svc := NewService(repo)
		for _, perPage := range []int{1, 2, 100} {
			page, err := svc.List(ctx, "", paging.Params{Page: math.MaxInt, PerPage: perPage})
			require.NoError(t, err)
			assert.Equal(t, 5, page.Total)
			assert.NotNil(t, page.Results)
			assert.Empty(t, page.Results, "per_page=%d", perPage)
			assert.Equal(t, math.MaxInt, page.CurrentPage)
		}
	})

	t.Run("genre is exact and case sensitive", func(t *testing.T) {
		items, total, err := repo.List(ctx, ListQuery{Genre: "Fantasy", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		for _, item := range items {
			assert.Equal(t, "Fantasy", *item.Genre)
		}

		_, total, err = repo.List(ctx, ListQuery{Genre: "Fant", Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestSQLiteRepo_Update(t *testing.T) {
	repo, authorID := newSQLiteRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, NewBook{
		Title:             "Rocannon's World",
		Genre:             strPtr("Science Fiction"),
		YearOfPublication: intPtr(1966),
		AuthorID:          idPtr(authorID),
	})
	require.NoError(t, err)

	t.Run("only present fields change", func(t *testing.T) {
		updated, err := repo.Update(ctx, created.ID, Patch{YearOfPublication: Some(1967)})
		require.NoError(t, err)
		assert.Equal(t, 1967, *updated.YearOfPublication)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rocannon's World", got.Title)
		assert.Equal(t, "Science Fiction", *got.Genre)
		assert.Equal(t, 1967, *got.YearOfPublication)
		assert.Equal(t, authorID, *got.AuthorID)
	})

	t.Run("null clears an optional field", func(t *testing.T) {
		_, err := repo.Update(ctx, created.ID, Patch{Genre: Null[string]()})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Genre)
		assert.Equal(t, "Rocannon's World", got.Title)
	})

	t.Run("empty patch leaves the row alone", func(t *testing.T) {
		before, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, Patch{})
		require.NoError(t, err)
		assert.Equal(t, before, updated)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := repo.Update(ctx, created.ID, Patch{AuthorID: Some(int64(9999))})
		assert.ErrorIs(t, err, ErrAuthorNotFound)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, authorID, *got.AuthorID)
	})

	t.Run("missing book", func(t *testing.T) {
		_, err := repo.Update(ctx, 9999, Patch{Title: Some("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLiteRepo_Delete(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, NewBook{Title: "Planet of Exile"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)

	// ids are not handed out again after a delete.
	next, err := repo.Create(ctx, NewBook{Title: "City of Illusions"})
	require.NoError(t, err)
	assert.Greater(t, next.ID, created.ID)
}

func TestMapSQLiteError_ForeignKey(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	// Bypass the eager check to hit the constraint itself.
	_, err := db.SQL.Exec(`INSERT INTO books (title, author_id) VALUES (?, ?)`, "Raw", 777)
	require.Error(t, err)
	assert.ErrorIs(t, mapSQLiteError(err), ErrAuthorNotFound)
}
