package newsdata

import (
	"github.com/cloudnews/cloudnews/src/models"
	"github.com/google/uuid"
)

// The writer-editable surface of an article. Everything not listed here is
// owned by the server: status, visits, the image name stem, and timestamps.
type ArticleFields struct {
	Title    string
	Text     string
	Location *models.Coordinates
	HasImage bool

	// Only used when building a brand-new article; existing articles keep
	// their original writer no matter what this says.
	Writer string
}

/*
Builds the article record that should be persisted, given the previously
saved state (nil for a first save) and the writer's current fields. Pure
function: it touches neither the database nor blob storage.

For a new article this mints the identity fields exactly once: a fresh id, a
fresh image name stem, draft status, zero visits. For an existing article it
carries every server-owned field over unchanged and only overwrites what the
writer is allowed to edit. In particular the image name stem survives image
replacement and removal, so a later image upload reuses the same blob names.
*/
func BuildArticle(previous *models.Article, fields ArticleFields) models.Article {
	var article models.Article
	if previous == nil {
		article = models.Article{
			ID:        uuid.New(),
			Status:    models.ArticleDraft,
			Writer:    fields.Writer,
			Visits:    0,
			ImageName: uuid.New().String(),
		}
	} else {
		article = *previous
	}

	article.Title = fields.Title
	article.Text = fields.Text
	article.HasImage = fields.HasImage
	if fields.Location == nil {
		article.Location = nil
	} else {
		loc := *fields.Location
		article.Location = &loc
	}

	return article
}
