package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newsclip/newsclip/internal/domain"
)

func TestBackfill_FillsOnlyEmptyFields(t *testing.T) {
	t.Parallel()

	published := time.Date(2025, time.August, 20, 11, 30, 0, 0, time.UTC)
	sectionID := "sec-1"

	existing := &domain.Article{
		Title:    "Titulo original",
		Subtitle: "",
		Author:   "Fulano",
		Body:     "corpo",
	}
	extracted := &domain.Article{
		Title:       "Titulo novo",
		Subtitle:    "Subtitulo novo",
		Author:      "Outra pessoa",
		SectionID:   &sectionID,
		PublishedAt: &published,
	}

	changed := existing.Backfill(extracted)
	assert.True(t, changed)

	assert.Equal(t, "Subtitulo novo", existing.Subtitle)
	assert.Equal(t, &sectionID, existing.SectionID)
	assert.Equal(t, &published, existing.PublishedAt)
	// Populated fields are never overwritten.
	assert.Equal(t, "Fulano", existing.Author)
	assert.Equal(t, "Titulo original", existing.Title)
}

func TestBackfill_NoChange(t *testing.T) {
	t.Parallel()

	published := time.Now()
	sectionID := "sec-1"
	full := &domain.Article{
		Subtitle:    "s",
		Author:      "a",
		SectionID:   &sectionID,
		PublishedAt: &published,
	}

	assert.False(t, full.Backfill(&domain.Article{Subtitle: "x", Author: "y"}))
	assert.False(t, (&domain.Article{}).Backfill(&domain.Article{}))
}
