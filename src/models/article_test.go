package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArticleStatus(t *testing.T) {
	for _, status := range AllArticleStatuses {
		parsed, err := ParseArticleStatus(string(status))
		assert.Nil(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParseArticleStatus("deleted")
	assert.NotNil(t, err)
	_, err = ParseArticleStatus("")
	assert.NotNil(t, err)
}

func TestStatusGate(t *testing.T) {
	assert.True(t, ArticleDraft.CanTransitionTo(ArticleSubmitted))
	assert.True(t, ArticleSubmitted.CanTransitionTo(ArticlePublished))

	// no skipping ahead
	assert.False(t, ArticleDraft.CanTransitionTo(ArticlePublished))

	// no moving backward
	assert.False(t, ArticleSubmitted.CanTransitionTo(ArticleDraft))
	assert.False(t, ArticlePublished.CanTransitionTo(ArticleDraft))
	assert.False(t, ArticlePublished.CanTransitionTo(ArticleSubmitted))

	// no self-transitions; submitting twice is not legal
	for _, status := range AllArticleStatuses {
		assert.False(t, status.CanTransitionTo(status))
	}
}
