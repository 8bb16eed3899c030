package newsdata

import (
	"context"
	"errors"
	"image"

	"github.com/cloudnews/cloudnews/src/assets"
	"github.com/cloudnews/cloudnews/src/db"
	"github.com/cloudnews/cloudnews/src/models"
	"github.com/cloudnews/cloudnews/src/oops"
	"github.com/google/uuid"
)

var (
	// The writer tried to save an article without a title or text.
	ErrEmptyFields = errors.New("article requires a title and text")

	// The writer tried to submit before ever saving.
	ErrMustSaveFirst = errors.New("article must be saved before submitting")

	// The article already left draft status, so it can no longer be edited
	// or submitted again.
	ErrAlreadySubmitted = errors.New("article has already been submitted")

	// The article the reconciler was asked to work on no longer exists (or
	// belongs to someone else).
	ErrArticleGone = errors.New("article no longer exists")

	// The record was saved but a blob operation failed, so the stored image
	// pair may not match the record. Always wrapped around the underlying
	// storage error.
	ErrAssetOperation = errors.New("image storage operation failed")
)

// What the writer is saving right now. A nil Image means no image is
// selected: any previously uploaded pair gets removed.
type SaveInput struct {
	Title    string
	Text     string
	Location *models.Coordinates
	Image    image.Image
}

func (in SaveInput) missingRequiredFields() bool {
	return in.Title == "" || in.Text == ""
}

/*
A Reconciler tracks one writer's work on one article and keeps the stored
record and its image blobs in sync with what the writer last saved. It holds
the last server-confirmed state of the article; every Save builds the next
record from that state plus the incoming fields, persists it, and then
reconciles blob storage against the record.

A Reconciler is bound to a single writer and is not safe for concurrent use.
Use a fresh one per request, calling Load first when the request targets an
existing article.
*/
type Reconciler struct {
	store  ArticleStore
	blobs  assets.BlobStore
	writer string

	// The last state the server confirmed, or nil before the first save of
	// a new article.
	cache *models.Article
}

func NewReconciler(store ArticleStore, blobs assets.BlobStore, writer string) *Reconciler {
	return &Reconciler{
		store:  store,
		blobs:  blobs,
		writer: writer,
	}
}

// The last server-confirmed state, or nil if nothing was saved or loaded yet.
func (r *Reconciler) Article() *models.Article {
	return r.cache
}

// Primes the reconciler with an existing draft of this writer. The cache is
// left untouched when the draft cannot be found, so a failed Load does not
// corrupt in-progress work.
func (r *Reconciler) Load(ctx context.Context, id uuid.UUID) error {
	article, err := r.store.One(ctx, ArticleQuery{
		IDs:    []uuid.UUID{id},
		Writer: r.writer,
	})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return ErrArticleGone
		}
		return oops.New(err, "failed to load article")
	}

	r.cache = article
	return nil
}

/*
Saves the writer's current fields. First saves create the record; later
saves update it. The record always goes to the database first; only once the
server confirms it does the reconciler touch blob storage, uploading the new
image pair or deleting the old one as the input dictates.

When the record was saved but the blob operation failed, Save returns the
saved article together with an error wrapping ErrAssetOperation. Callers
should treat that as a partial success: the record is durable and the cache
reflects it, only the image pair is suspect. Nothing is compensated or
rolled back.
*/
func (r *Reconciler) Save(ctx context.Context, input SaveInput) (*models.Article, error) {
	if input.missingRequiredFields() {
		return nil, ErrEmptyFields
	}
	if r.cache != nil && !r.cache.Editable() {
		return nil, ErrAlreadySubmitted
	}

	hadImage := r.cache != nil && r.cache.HasImage

	article := BuildArticle(r.cache, ArticleFields{
		Title:    input.Title,
		Text:     input.Text,
		Location: input.Location,
		HasImage: input.Image != nil,
		Writer:   r.writer,
	})

	var saved *models.Article
	var err error
	if r.cache == nil {
		saved, err = r.store.Insert(ctx, article)
	} else {
		saved, err = r.store.Update(ctx, article)
	}
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrArticleGone
		}
		return nil, oops.New(err, "failed to save article")
	}
	r.cache = saved

	if input.Image != nil {
		err := assets.UploadImagePair(ctx, r.blobs, input.Image, saved.ImageName)
		if err != nil {
			return saved, oops.New(errors.Join(ErrAssetOperation, err), "failed to store image pair")
		}
	} else if hadImage {
		err := assets.DeleteImagePair(ctx, r.blobs, saved.ImageName)
		if err != nil {
			return saved, oops.New(errors.Join(ErrAssetOperation, err), "failed to remove image pair")
		}
	}

	return saved, nil
}

// Submits the article for publication. Only a saved draft can be submitted;
// the status gate stops everything else.
func (r *Reconciler) Submit(ctx context.Context) (*models.Article, error) {
	if r.cache == nil {
		return nil, ErrMustSaveFirst
	}
	if !r.cache.Status.CanTransitionTo(models.ArticleSubmitted) {
		return nil, ErrAlreadySubmitted
	}

	article := *r.cache
	article.Status = models.ArticleSubmitted

	saved, err := r.store.Update(ctx, article)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrArticleGone
		}
		return nil, oops.New(err, "failed to submit article")
	}

	r.cache = saved
	return saved, nil
}
