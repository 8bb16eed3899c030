package newsdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudnews/cloudnews/src/db"
	"github.com/cloudnews/cloudnews/src/models"
	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var articleColumns = []string{
	"id", "title", "text", "status", "writer", "latitude", "longitude",
	"visits", "has_image", "image_name", "created_at", "updated_at", "published_at",
}

func newMockStore(t *testing.T) (*PGArticleStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPGArticleStore(mock), mock
}

func articleRowValues(id uuid.UUID, status models.ArticleStatus) []any {
	now := time.Now()
	return []any{
		id, "Title", "Text", string(status), "writer-1", nil, nil,
		0, false, "stem", now, now, nil,
	}
}

func TestPGStoreInsert(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(`INSERT INTO article`).
		WithArgs(id, "Title", "Text", "draft", "writer-1", pgxmock.AnyArg(), pgxmock.AnyArg(), 0, false, "stem").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT .+ FROM article`).
		WithArgs([]uuid.UUID{id}, 1, 0).
		WillReturnRows(pgxmock.NewRows(articleColumns).AddRow(articleRowValues(id, models.ArticleDraft)...))

	saved, err := store.Insert(ctx, models.Article{
		ID:        id,
		Title:     "Title",
		Text:      "Text",
		Status:    models.ArticleDraft,
		Writer:    "writer-1",
		ImageName: "stem",
	})
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, models.ArticleDraft, saved.Status)
	assert.Nil(t, saved.Location)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		store, mock := newMockStore(t)
		id := uuid.New()

		mock.ExpectExec(`UPDATE article`).
			WithArgs(id, "Title", "Text", "submitted", pgxmock.AnyArg(), pgxmock.AnyArg(), false).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(`SELECT .+ FROM article`).
			WithArgs([]uuid.UUID{id}, 1, 0).
			WillReturnRows(pgxmock.NewRows(articleColumns).AddRow(articleRowValues(id, models.ArticleSubmitted)...))

		saved, err := store.Update(ctx, models.Article{ID: id, Title: "Title", Text: "Text", Status: models.ArticleSubmitted})
		require.NoError(t, err)
		assert.Equal(t, models.ArticleSubmitted, saved.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown article", func(t *testing.T) {
		store, mock := newMockStore(t)
		id := uuid.New()

		mock.ExpectExec(`UPDATE article`).
			WithArgs(id, "", "", "", pgxmock.AnyArg(), pgxmock.AnyArg(), false).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		_, err := store.Update(ctx, models.Article{ID: id})
		assert.ErrorIs(t, err, db.NotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPGStoreOne(t *testing.T) {
	ctx := context.Background()

	t.Run("no match", func(t *testing.T) {
		store, mock := newMockStore(t)
		id := uuid.New()

		mock.ExpectQuery(`SELECT .+ FROM article`).
			WithArgs([]uuid.UUID{id}, 1, 0).
			WillReturnRows(pgxmock.NewRows(articleColumns))

		_, err := store.One(ctx, ArticleQuery{IDs: []uuid.UUID{id}})
		assert.ErrorIs(t, err, db.NotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps coordinate columns", func(t *testing.T) {
		store, mock := newMockStore(t)
		id := uuid.New()
		now := time.Now()
		lat, long := 52.37, 4.89

		mock.ExpectQuery(`SELECT .+ FROM article`).
			WithArgs([]uuid.UUID{id}, 1, 0).
			WillReturnRows(pgxmock.NewRows(articleColumns).AddRow(
				id, "T", "X", "published", "writer-1", &lat, &long,
				3, true, "stem", now, now, &now,
			))

		article, err := store.One(ctx, ArticleQuery{IDs: []uuid.UUID{id}})
		require.NoError(t, err)
		require.NotNil(t, article.Location)
		assert.Equal(t, 52.37, article.Location.Latitude)
		assert.Equal(t, 4.89, article.Location.Longitude)
		assert.Equal(t, 3, article.Visits)
		require.NotNil(t, article.PublishedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPGStoreIncrementVisits(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`UPDATE article`).
		WithArgs(id, "published").
		WillReturnRows(pgxmock.NewRows([]string{"visits"}).AddRow(8))

	visits, err := store.IncrementVisits(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 8, visits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStorePublishDue(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes due articles", func(t *testing.T) {
		store, mock := newMockStore(t)
		cutoff := time.Now().Add(-15 * time.Minute)

		mock.ExpectExec(`UPDATE article`).
			WithArgs("published", "submitted", cutoff).
			WillReturnResult(pgxmock.NewResult("UPDATE", 2))

		n, err := store.PublishDue(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectExec(`UPDATE article`).
			WillReturnError(errors.New("connection lost"))

		_, err := store.PublishDue(ctx, time.Now())
		require.Error(t, err)
	})
}
