package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticleSubmitted ArticleStatus = "submitted"
	ArticlePublished ArticleStatus = "published"
)

var AllArticleStatuses = []ArticleStatus{
	ArticleDraft,
	ArticleSubmitted,
	ArticlePublished,
}

func ParseArticleStatus(s string) (ArticleStatus, error) {
	switch ArticleStatus(s) {
	case ArticleDraft:
		return ArticleDraft, nil
	case ArticleSubmitted:
		return ArticleSubmitted, nil
	case ArticlePublished:
		return ArticlePublished, nil
	default:
		return "", fmt.Errorf("unrecognized article status '%s'", s)
	}
}

// The status gate. Statuses only ever move forward: a writer submits a
// draft, and the background publisher promotes submitted articles. Nothing
// moves an article backward.
func (s ArticleStatus) CanTransitionTo(next ArticleStatus) bool {
	switch s {
	case ArticleDraft:
		return next == ArticleSubmitted
	case ArticleSubmitted:
		return next == ArticlePublished
	case ArticlePublished:
		return false
	default:
		return false
	}
}

// An optional latitude/longitude pair. Articles either have both coordinates
// or neither, so the pair travels as a single optional value.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type Article struct {
	ID     uuid.UUID
	Title  string
	Text   string
	Status ArticleStatus

	// The id of the authoring user. Set once at creation, never mutated.
	Writer string

	Location *Coordinates

	// Incremented server-side every time a published article is read.
	Visits int

	HasImage bool

	// The stable stem that full-image and thumbnail blob names derive from.
	// Generated exactly once, at creation, whether or not an image is
	// attached then. Never regenerated, even if the image is replaced.
	ImageName string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

func (a *Article) Editable() bool {
	return a.Status == ArticleDraft
}
