package newsdata

import (
	"context"
	"time"

	"github.com/cloudnews/cloudnews/src/db"
	"github.com/cloudnews/cloudnews/src/models"
	"github.com/cloudnews/cloudnews/src/oops"
	"github.com/google/uuid"
)

// Persistence for article records. Fetches that match nothing return
// db.NotFound from One and an empty slice from All.
type ArticleStore interface {
	Insert(ctx context.Context, article models.Article) (*models.Article, error)
	Update(ctx context.Context, article models.Article) (*models.Article, error)
	One(ctx context.Context, q ArticleQuery) (*models.Article, error)
	All(ctx context.Context, q ArticleQuery) ([]*models.Article, error)

	// Bumps the visit counter of a published article and returns the new
	// count. db.NotFound if the article does not exist or is not published.
	IncrementVisits(ctx context.Context, id uuid.UUID) (int, error)

	// Promotes every article that was submitted at or before the given time
	// to published, stamping published_at. Returns how many were promoted.
	PublishDue(ctx context.Context, submittedBefore time.Time) (int, error)
}

type ArticleQuery struct {
	IDs      []uuid.UUID
	Writer   string
	Statuses []models.ArticleStatus

	// Orders by publication time instead of creation time. Only meaningful
	// when querying published articles.
	OrderByPublished bool

	Limit, Offset int
}

type PGArticleStore struct {
	conn db.ConnOrTx
}

var _ ArticleStore = &PGArticleStore{}

func NewPGArticleStore(conn db.ConnOrTx) *PGArticleStore {
	return &PGArticleStore{conn: conn}
}

// The article table row. Coordinates are stored as two nullable columns that
// are always set or cleared together.
type articleRow struct {
	ID          uuid.UUID  `db:"id"`
	Title       string     `db:"title"`
	Text        string     `db:"text"`
	Status      string     `db:"status"`
	Writer      string     `db:"writer"`
	Latitude    *float64   `db:"latitude"`
	Longitude   *float64   `db:"longitude"`
	Visits      int        `db:"visits"`
	HasImage    bool       `db:"has_image"`
	ImageName   string     `db:"image_name"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	PublishedAt *time.Time `db:"published_at"`
}

func (row *articleRow) toModel() *models.Article {
	article := &models.Article{
		ID:          row.ID,
		Title:       row.Title,
		Text:        row.Text,
		Status:      models.ArticleStatus(row.Status),
		Writer:      row.Writer,
		Visits:      row.Visits,
		HasImage:    row.HasImage,
		ImageName:   row.ImageName,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		PublishedAt: row.PublishedAt,
	}
	if row.Latitude != nil && row.Longitude != nil {
		article.Location = &models.Coordinates{
			Latitude:  *row.Latitude,
			Longitude: *row.Longitude,
		}
	}
	return article
}

func locationColumns(article models.Article) (lat, long *float64) {
	if article.Location != nil {
		lat = &article.Location.Latitude
		long = &article.Location.Longitude
	}
	return
}

func (s *PGArticleStore) Insert(ctx context.Context, article models.Article) (*models.Article, error) {
	lat, long := locationColumns(article)
	_, err := s.conn.Exec(ctx,
		`
		INSERT INTO article (id, title, text, status, writer, latitude, longitude, visits, has_image, image_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		`,
		article.ID,
		article.Title,
		article.Text,
		string(article.Status),
		article.Writer,
		lat,
		long,
		article.Visits,
		article.HasImage,
		article.ImageName,
	)
	if err != nil {
		return nil, oops.New(err, "failed to insert article")
	}

	return s.One(ctx, ArticleQuery{IDs: []uuid.UUID{article.ID}})
}

func (s *PGArticleStore) Update(ctx context.Context, article models.Article) (*models.Article, error) {
	lat, long := locationColumns(article)
	tag, err := s.conn.Exec(ctx,
		`
		UPDATE article
		SET title = $2, text = $3, status = $4, latitude = $5, longitude = $6, has_image = $7, updated_at = NOW()
		WHERE id = $1
		`,
		article.ID,
		article.Title,
		article.Text,
		string(article.Status),
		lat,
		long,
		article.HasImage,
	)
	if err != nil {
		return nil, oops.New(err, "failed to update article")
	}
	if tag.RowsAffected() == 0 {
		return nil, db.NotFound
	}

	return s.One(ctx, ArticleQuery{IDs: []uuid.UUID{article.ID}})
}

func (s *PGArticleStore) One(ctx context.Context, q ArticleQuery) (*models.Article, error) {
	q.Limit, q.Offset = 1, 0
	rows, err := s.All(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, db.NotFound
	}
	return rows[0], nil
}

func (s *PGArticleStore) All(ctx context.Context, q ArticleQuery) ([]*models.Article, error) {
	var qb db.QueryBuilder
	qb.Add(
		`
		SELECT $columns
		FROM article
		WHERE TRUE
		`,
	)
	if len(q.IDs) > 0 {
		qb.Add(`AND id = ANY ($?)`, q.IDs)
	}
	if q.Writer != "" {
		qb.Add(`AND writer = $?`, q.Writer)
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, status := range q.Statuses {
			statuses[i] = string(status)
		}
		qb.Add(`AND status = ANY ($?)`, statuses)
	}
	if q.OrderByPublished {
		qb.Add(`ORDER BY published_at DESC`)
	} else {
		qb.Add(`ORDER BY created_at DESC`)
	}
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	rows, err := db.Query[articleRow](ctx, s.conn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch articles")
	}

	articles := make([]*models.Article, len(rows))
	for i, row := range rows {
		articles[i] = row.toModel()
	}
	return articles, nil
}

func (s *PGArticleStore) IncrementVisits(ctx context.Context, id uuid.UUID) (int, error) {
	return db.QueryOneScalar[int](ctx, s.conn,
		`
		UPDATE article
		SET visits = visits + 1
		WHERE id = $1 AND status = $2
		RETURNING visits
		`,
		id,
		string(models.ArticlePublished),
	)
}

// Articles cannot be edited once submitted, so updated_at is the moment of
// submission for every submitted article.
func (s *PGArticleStore) PublishDue(ctx context.Context, submittedBefore time.Time) (int, error) {
	tag, err := s.conn.Exec(ctx,
		`
		UPDATE article
		SET status = $1, published_at = NOW(), updated_at = NOW()
		WHERE status = $2 AND updated_at <= $3
		`,
		string(models.ArticlePublished),
		string(models.ArticleSubmitted),
		submittedBefore,
	)
	if err != nil {
		return 0, oops.New(err, "failed to publish due articles")
	}
	return int(tag.RowsAffected()), nil
}
