package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDropsEmptyText(t *testing.T) {
	raw := []RawItem{
		{ID: "1", Text: "first post"},
		{ID: "2", Text: ""},
		{ID: "3", Text: "   "},
		{ID: "4", Text: "last post"},
	}

	corpus := Normalize(raw)

	assert.Len(t, corpus.Items, 2)
	assert.Equal(t, 2, corpus.Skipped)
	assert.Equal(t, "1", corpus.Items[0].ID)
	assert.Equal(t, "4", corpus.Items[1].ID)
}

func TestNormalizePreservesOrderAndFields(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := []RawItem{
		{ID: "a", Text: "one", CreatedAt: created, Metadata: map[string]interface{}{"lang": "en"}},
		{ID: "b", Text: "two"},
		{ID: "c", Text: "three"},
	}

	corpus := Normalize(raw)

	assert.Equal(t, []string{"one", "two", "three"}, corpus.Texts())
	assert.Equal(t, created, corpus.Items[0].CreatedAt)
	assert.Equal(t, "en", corpus.Items[0].Metadata["lang"])
}

func TestNormalizeEmptyInput(t *testing.T) {
	corpus := Normalize(nil)

	assert.Empty(t, corpus.Items)
	assert.Zero(t, corpus.Skipped)
	assert.Empty(t, corpus.Texts())
}
