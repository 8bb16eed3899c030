package website

import (
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"

	"github.com/cloudnews/cloudnews/src/models"
	"github.com/cloudnews/cloudnews/src/newsdata"
)

const maxImageUploadSize = 10 * 1024 * 1024

type saveArticleResponse struct {
	Article articleJson `json:"article"`
	Warning string      `json:"warning,omitempty"`
}

func MyArticles(c *RequestContext) ResponseData {
	q := newsdata.ArticleQuery{
		Writer: c.CurrentSession.UserID,
	}
	if statusStr := c.URL().Query().Get("status"); statusStr != "" {
		status, err := models.ParseArticleStatus(statusStr)
		if err != nil {
			return c.ErrorResponse(http.StatusUnprocessableEntity, "unrecognized status")
		}
		q.Statuses = []models.ArticleStatus{status}
	}

	store := newsdata.NewPGArticleStore(c.Conn)
	articles, err := store.All(c, q)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, "failed to fetch articles", err)
	}

	result := make([]articleJson, len(articles))
	for i, article := range articles {
		result[i] = articleToJson(article)
	}

	var res ResponseData
	res.WriteJson(map[string]any{"articles": result})
	return res
}

/*
Handles both the first save of a new article (no id in the path) and every
later save of an existing one. The request is a multipart form with title,
text, an optional latitude/longitude pair, and an optional image file.
Omitting the image on an article that had one removes it.
*/
func SaveArticle(c *RequestContext) ResponseData {
	store := newsdata.NewPGArticleStore(c.Conn)
	r := newsdata.NewReconciler(store, c.Blobs, c.CurrentSession.UserID)

	if idStr, hasId := c.PathParams["id"]; hasId && idStr != "" {
		id, ok := articleIdParam(c)
		if !ok {
			return FourOhFour(c)
		}
		err := r.Load(c, id)
		if err != nil {
			if errors.Is(err, newsdata.ErrArticleGone) {
				return FourOhFour(c)
			}
			return c.ErrorResponse(http.StatusInternalServerError, "failed to load article", err)
		}
	}

	input, errRes := parseSaveInput(c)
	if errRes != nil {
		return *errRes
	}

	saved, err := r.Save(c, input)
	switch {
	case err == nil:
		var res ResponseData
		res.WriteJson(saveArticleResponse{Article: articleToJson(saved)})
		return res
	case errors.Is(err, newsdata.ErrAssetOperation) && saved != nil:
		// The record is durable, only the image blobs are suspect. The
		// client gets its article back along with a warning.
		c.Logger.Warn().Err(err).Msg("article saved but image storage failed")
		var res ResponseData
		res.WriteJson(saveArticleResponse{
			Article: articleToJson(saved),
			Warning: "the article was saved, but its image could not be stored",
		})
		return res
	case errors.Is(err, newsdata.ErrEmptyFields):
		return c.ErrorResponse(http.StatusUnprocessableEntity, "article has no content")
	case errors.Is(err, newsdata.ErrAlreadySubmitted):
		return c.ErrorResponse(http.StatusConflict, "article has already been submitted")
	case errors.Is(err, newsdata.ErrArticleGone):
		return FourOhFour(c)
	default:
		return c.ErrorResponse(http.StatusInternalServerError, "failed to save article", err)
	}
}

func SubmitArticle(c *RequestContext) ResponseData {
	id, ok := articleIdParam(c)
	if !ok {
		return FourOhFour(c)
	}

	store := newsdata.NewPGArticleStore(c.Conn)
	r := newsdata.NewReconciler(store, c.Blobs, c.CurrentSession.UserID)

	err := r.Load(c, id)
	if err != nil {
		if errors.Is(err, newsdata.ErrArticleGone) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, "failed to load article", err)
	}

	submitted, err := r.Submit(c)
	switch {
	case err == nil:
		var res ResponseData
		res.WriteJson(articleToJson(submitted))
		return res
	case errors.Is(err, newsdata.ErrAlreadySubmitted):
		return c.ErrorResponse(http.StatusConflict, "article has already been submitted")
	case errors.Is(err, newsdata.ErrArticleGone):
		return FourOhFour(c)
	default:
		return c.ErrorResponse(http.StatusInternalServerError, "failed to submit article", err)
	}
}

func parseSaveInput(c *RequestContext) (newsdata.SaveInput, *ResponseData) {
	fail := func(status int, reason string) (newsdata.SaveInput, *ResponseData) {
		res := c.ErrorResponse(status, reason)
		return newsdata.SaveInput{}, &res
	}

	err := c.Req.ParseMultipartForm(maxImageUploadSize)
	if err != nil {
		return fail(http.StatusUnprocessableEntity, "malformed form data")
	}

	input := newsdata.SaveInput{
		Title: c.Req.FormValue("title"),
		Text:  c.Req.FormValue("text"),
	}

	latStr := c.Req.FormValue("latitude")
	longStr := c.Req.FormValue("longitude")
	if (latStr == "") != (longStr == "") {
		return fail(http.StatusUnprocessableEntity, "latitude and longitude must be provided together")
	}
	if latStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		long, longErr := strconv.ParseFloat(longStr, 64)
		if latErr != nil || longErr != nil {
			return fail(http.StatusUnprocessableEntity, "malformed coordinates")
		}
		input.Location = &models.Coordinates{Latitude: lat, Longitude: long}
	}

	file, _, err := c.Req.FormFile("image")
	if err == nil {
		defer file.Close()
		img, _, decodeErr := image.Decode(file)
		if decodeErr != nil {
			return fail(http.StatusUnprocessableEntity, "unrecognized image format")
		}
		input.Image = img
	} else if !errors.Is(err, http.ErrMissingFile) {
		return fail(http.StatusUnprocessableEntity, "malformed form data")
	}

	return input, nil
}
