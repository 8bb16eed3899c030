package website

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cloudnews/cloudnews/src/assets"
	"github.com/cloudnews/cloudnews/src/db"
	"github.com/cloudnews/cloudnews/src/models"
	"github.com/cloudnews/cloudnews/src/newsdata"
	"github.com/google/uuid"
)

const defaultPageSize = 20
const maxPageSize = 100

type coordinatesJson struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type articleJson struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Text       string           `json:"text"`
	Status     string           `json:"status"`
	Writer     string           `json:"writer"`
	WriterName string           `json:"writer_name,omitempty"`
	Location   *coordinatesJson `json:"location,omitempty"`
	Visits     int              `json:"visits"`
	HasImage   bool             `json:"has_image"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func articleToJson(article *models.Article) articleJson {
	result := articleJson{
		ID:          article.ID.String(),
		Title:       article.Title,
		Text:        article.Text,
		Status:      string(article.Status),
		Writer:      article.Writer,
		Visits:      article.Visits,
		HasImage:    article.HasImage,
		CreatedAt:   article.CreatedAt,
		UpdatedAt:   article.UpdatedAt,
		PublishedAt: article.PublishedAt,
	}
	if article.Location != nil {
		result.Location = &coordinatesJson{
			Latitude:  article.Location.Latitude,
			Longitude: article.Location.Longitude,
		}
	}
	return result
}

func PublishedNews(c *RequestContext) ResponseData {
	limit := defaultPageSize
	offset := 0
	if limitStr := c.URL().Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= maxPageSize {
			limit = parsed
		}
	}
	if offsetStr := c.URL().Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	store := newsdata.NewPGArticleStore(c.Conn)
	articles, err := store.All(c, newsdata.ArticleQuery{
		Statuses:         []models.ArticleStatus{models.ArticlePublished},
		OrderByPublished: true,
		Limit:            limit,
		Offset:           offset,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, "failed to fetch news", err)
	}

	result := make([]articleJson, len(articles))
	for i, article := range articles {
		result[i] = articleToJson(article)
	}

	var res ResponseData
	res.WriteJson(map[string]any{"news": result})
	return res
}

func ReadNews(c *RequestContext) ResponseData {
	id, ok := articleIdParam(c)
	if !ok {
		return FourOhFour(c)
	}

	store := newsdata.NewPGArticleStore(c.Conn)
	article, err := store.One(c, newsdata.ArticleQuery{
		IDs:      []uuid.UUID{id},
		Statuses: []models.ArticleStatus{models.ArticlePublished},
	})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, "failed to fetch news", err)
	}

	// Reading an article counts as a visit.
	visits, err := store.IncrementVisits(c, id)
	if err != nil {
		c.Logger.Error().Err(err).Msg("failed to count visit")
	} else {
		article.Visits = visits
	}

	result := articleToJson(article)

	// The writer's display name is cosmetic; the article is still served
	// when the lookup fails.
	name, err := c.FBClient.UserName(c, article.Writer)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("failed to resolve writer name")
	} else {
		result.WriterName = name
	}

	var res ResponseData
	res.WriteJson(result)
	return res
}

func NewsImage(c *RequestContext) ResponseData {
	return serveArticleImage(c, assets.FullImageName)
}

func NewsThumbnail(c *RequestContext) ResponseData {
	return serveArticleImage(c, assets.ThumbImageName)
}

func serveArticleImage(c *RequestContext, blobName func(stem string) string) ResponseData {
	id, ok := articleIdParam(c)
	if !ok {
		return FourOhFour(c)
	}

	store := newsdata.NewPGArticleStore(c.Conn)
	article, err := store.One(c, newsdata.ArticleQuery{
		IDs:      []uuid.UUID{id},
		Statuses: []models.ArticleStatus{models.ArticlePublished},
	})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, "failed to fetch news", err)
	}
	if !article.HasImage {
		return FourOhFour(c)
	}

	data, err := c.Blobs.Download(c, blobName(article.ImageName))
	if err != nil {
		if errors.Is(err, assets.ErrBlobNotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, "failed to fetch image", err)
	}

	var res ResponseData
	res.Header().Set("Content-Type", "image/jpeg")
	res.Write(data)
	return res
}

func articleIdParam(c *RequestContext) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.PathParams["id"])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
