package website

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveRequest(t *testing.T, fields map[string]string) *RequestContext {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, form.WriteField(name, value))
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/articles", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return &RequestContext{Req: req}
}

func TestParseSaveInput(t *testing.T) {
	t.Run("coordinate pair", func(t *testing.T) {
		c := saveRequest(t, map[string]string{
			"title":     "t",
			"text":      "x",
			"latitude":  "52.37",
			"longitude": "4.89",
		})

		input, errRes := parseSaveInput(c)
		require.Nil(t, errRes)
		require.NotNil(t, input.Location)
		assert.Equal(t, 52.37, input.Location.Latitude)
		assert.Equal(t, 4.89, input.Location.Longitude)
	})

	t.Run("no coordinates", func(t *testing.T) {
		c := saveRequest(t, map[string]string{"title": "t", "text": "x"})

		input, errRes := parseSaveInput(c)
		require.Nil(t, errRes)
		assert.Nil(t, input.Location)
	})

	t.Run("one-sided coordinates are rejected", func(t *testing.T) {
		c := saveRequest(t, map[string]string{
			"title":    "t",
			"text":     "x",
			"latitude": "52.37",
		})

		_, errRes := parseSaveInput(c)
		require.NotNil(t, errRes)
		assert.Equal(t, http.StatusUnprocessableEntity, errRes.StatusCode)
	})

	t.Run("malformed coordinates", func(t *testing.T) {
		c := saveRequest(t, map[string]string{
			"title":     "t",
			"text":      "x",
			"latitude":  "not-a-number",
			"longitude": "4.89",
		})

		_, errRes := parseSaveInput(c)
		require.NotNil(t, errRes)
		assert.Equal(t, http.StatusUnprocessableEntity, errRes.StatusCode)
	})
}
