package newsdata

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/cloudnews/cloudnews/src/assets"
	"github.com/cloudnews/cloudnews/src/db"
	"github.com/cloudnews/cloudnews/src/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveNewArticle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	blobs := assets.NewMemStore()
	r := NewReconciler(store, blobs, "writer-1")

	saved, err := r.Save(ctx, SaveInput{
		Title: "First",
		Text:  "Hello",
		Image: testImage(),
	})
	require.Nil(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, models.ArticleDraft, saved.Status)
	assert.Equal(t, "writer-1", saved.Writer)
	assert.True(t, saved.HasImage)
	assert.True(t, blobs.Has(assets.FullImageName(saved.ImageName)))
	assert.True(t, blobs.Has(assets.ThumbImageName(saved.ImageName)))

	stored, err := store.One(ctx, ArticleQuery{IDs: []uuid.UUID{saved.ID}})
	require.Nil(t, err)
	assert.Equal(t, "First", stored.Title)
}

func TestSaveEmptyFields(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(newFakeStore(), assets.NewMemStore(), "writer-1")

	_, err := r.Save(ctx, SaveInput{})
	assert.ErrorIs(t, err, ErrEmptyFields)

	_, err = r.Save(ctx, SaveInput{Title: "only a title"})
	assert.ErrorIs(t, err, ErrEmptyFields)

	_, err = r.Save(ctx, SaveInput{Text: "only some text"})
	assert.ErrorIs(t, err, ErrEmptyFields)

	assert.Nil(t, r.Article())
}

func TestSaveUpdatesExistingArticle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	blobs := assets.NewMemStore()
	r := NewReconciler(store, blobs, "writer-1")

	first, err := r.Save(ctx, SaveInput{Title: "v1", Text: "text", Image: testImage()})
	require.Nil(t, err)

	second, err := r.Save(ctx, SaveInput{Title: "v2", Text: "text"})
	require.Nil(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "v2", second.Title)
	assert.Equal(t, first.ImageName, second.ImageName)

	// No image in the second save means the pair gets removed.
	assert.False(t, second.HasImage)
	assert.False(t, blobs.Has(assets.FullImageName(first.ImageName)))
	assert.False(t, blobs.Has(assets.ThumbImageName(first.ImageName)))
}

func TestSaveImageFailureIsPartialSuccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	blobs := &brokenBlobs{}
	r := NewReconciler(store, blobs, "writer-1")

	saved, err := r.Save(ctx, SaveInput{Title: "t", Text: "x", Image: testImage()})

	// The record landed; only the blobs are suspect.
	require.NotNil(t, saved)
	assert.ErrorIs(t, err, ErrAssetOperation)

	stored, storeErr := store.One(ctx, ArticleQuery{IDs: []uuid.UUID{saved.ID}})
	require.Nil(t, storeErr)
	assert.True(t, stored.HasImage)
	assert.Equal(t, saved, r.Article())
}

func TestSubmitRequiresSave(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(newFakeStore(), assets.NewMemStore(), "writer-1")

	_, err := r.Submit(ctx)
	assert.ErrorIs(t, err, ErrMustSaveFirst)
}

func TestSubmitLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	r := NewReconciler(store, assets.NewMemStore(), "writer-1")

	_, err := r.Save(ctx, SaveInput{Title: "t", Text: "x"})
	require.Nil(t, err)

	submitted, err := r.Submit(ctx)
	require.Nil(t, err)
	assert.Equal(t, models.ArticleSubmitted, submitted.Status)

	// No edits and no second submission once it left draft.
	_, err = r.Submit(ctx)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	_, err = r.Save(ctx, SaveInput{Title: "t2", Text: "x"})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	first := NewReconciler(store, assets.NewMemStore(), "writer-1")
	saved, err := first.Save(ctx, SaveInput{Title: "t", Text: "x"})
	require.Nil(t, err)

	t.Run("primes the cache with the stored draft", func(t *testing.T) {
		r := NewReconciler(store, assets.NewMemStore(), "writer-1")
		require.Nil(t, r.Load(ctx, saved.ID))

		updated, err := r.Save(ctx, SaveInput{Title: "t2", Text: "x"})
		require.Nil(t, err)
		assert.Equal(t, saved.ID, updated.ID)
	})

	t.Run("unknown article", func(t *testing.T) {
		r := NewReconciler(store, assets.NewMemStore(), "writer-1")
		err := r.Load(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrArticleGone)
		assert.Nil(t, r.Article())
	})

	t.Run("someone else's article", func(t *testing.T) {
		r := NewReconciler(store, assets.NewMemStore(), "writer-2")
		err := r.Load(ctx, saved.ID)
		assert.ErrorIs(t, err, ErrArticleGone)
	})

	t.Run("failed load leaves the cache alone", func(t *testing.T) {
		r := NewReconciler(store, assets.NewMemStore(), "writer-1")
		require.Nil(t, r.Load(ctx, saved.ID))
		require.ErrorIs(t, r.Load(ctx, uuid.New()), ErrArticleGone)
		assert.NotNil(t, r.Article())
	})
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 64, 48))
}

// An in-memory ArticleStore with the same observable behavior as the
// database-backed one.
type fakeStore struct {
	articles map[uuid.UUID]*models.Article
}

var _ ArticleStore = &fakeStore{}

func newFakeStore() *fakeStore {
	return &fakeStore{articles: make(map[uuid.UUID]*models.Article)}
}

func (s *fakeStore) Insert(ctx context.Context, article models.Article) (*models.Article, error) {
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now
	s.articles[article.ID] = &article
	return s.One(ctx, ArticleQuery{IDs: []uuid.UUID{article.ID}})
}

func (s *fakeStore) Update(ctx context.Context, article models.Article) (*models.Article, error) {
	existing, ok := s.articles[article.ID]
	if !ok {
		return nil, db.NotFound
	}
	article.Writer = existing.Writer
	article.Visits = existing.Visits
	article.ImageName = existing.ImageName
	article.CreatedAt = existing.CreatedAt
	article.UpdatedAt = time.Now()
	s.articles[article.ID] = &article
	return s.One(ctx, ArticleQuery{IDs: []uuid.UUID{article.ID}})
}

func (s *fakeStore) One(ctx context.Context, q ArticleQuery) (*models.Article, error) {
	all, err := s.All(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, db.NotFound
	}
	return all[0], nil
}

func (s *fakeStore) All(ctx context.Context, q ArticleQuery) ([]*models.Article, error) {
	var result []*models.Article
	for _, article := range s.articles {
		if len(q.IDs) > 0 && !containsID(q.IDs, article.ID) {
			continue
		}
		if q.Writer != "" && article.Writer != q.Writer {
			continue
		}
		if len(q.Statuses) > 0 && !containsStatus(q.Statuses, article.Status) {
			continue
		}
		copied := *article
		result = append(result, &copied)
	}
	return result, nil
}

func (s *fakeStore) IncrementVisits(ctx context.Context, id uuid.UUID) (int, error) {
	article, ok := s.articles[id]
	if !ok || article.Status != models.ArticlePublished {
		return 0, db.NotFound
	}
	article.Visits++
	return article.Visits, nil
}

func (s *fakeStore) PublishDue(ctx context.Context, submittedBefore time.Time) (int, error) {
	n := 0
	for _, article := range s.articles {
		if article.Status == models.ArticleSubmitted && !article.UpdatedAt.After(submittedBefore) {
			now := time.Now()
			article.Status = models.ArticlePublished
			article.PublishedAt = &now
			n++
		}
	}
	return n, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.ArticleStatus, status models.ArticleStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// A blob store where every operation fails.
type brokenBlobs struct{}

func (b *brokenBlobs) Upload(ctx context.Context, name string, contentType string, data []byte) error {
	return errors.New("blob storage down")
}

func (b *brokenBlobs) Download(ctx context.Context, name string) ([]byte, error) {
	return nil, errors.New("blob storage down")
}

func (b *brokenBlobs) Delete(ctx context.Context, name string) error {
	return errors.New("blob storage down")
}
