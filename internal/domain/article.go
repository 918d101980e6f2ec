package domain

import "time"

// Article is one ingested piece of content. (vehicle_id, url) is unique and
// serves as the dedup key: an article is created on the first successful
// extraction of a URL, and on repeat encounters only empty fields are
// backfilled, never overwritten.
type Article struct {
	ID        string  `db:"id"         json:"id"`
	VehicleID string  `db:"vehicle_id" json:"vehicle_id"`
	SectionID *string `db:"section_id" json:"section_id,omitempty"`
	URL       string  `db:"url"        json:"url"`
	Title     string  `db:"title"      json:"title"`
	Subtitle  string  `db:"subtitle"   json:"subtitle,omitempty"`
	Author    string  `db:"author"     json:"author,omitempty"`
	Body      string  `db:"body"       json:"body"`

	// PublishedAt is nil when no date could be extracted; presentation falls
	// back to CapturedAt.
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CapturedAt  time.Time  `db:"captured_at"  json:"captured_at"`
}

// Backfill copies non-empty values from extracted into currently-empty fields
// of the article and reports whether anything changed. Populated fields are
// never overwritten, matching the ingestion upsert contract.
func (a *Article) Backfill(extracted *Article) bool {
	changed := false
	if a.SectionID == nil && extracted.SectionID != nil {
		a.SectionID = extracted.SectionID
		changed = true
	}
	if a.Subtitle == "" && extracted.Subtitle != "" {
		a.Subtitle = extracted.Subtitle
		changed = true
	}
	if a.Author == "" && extracted.Author != "" {
		a.Author = extracted.Author
		changed = true
	}
	if a.PublishedAt == nil && extracted.PublishedAt != nil {
		a.PublishedAt = extracted.PublishedAt
		changed = true
	}
	return changed
}
