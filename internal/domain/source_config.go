package domain

import (
	"strings"
	"time"
)

// DefaultIntervalMinutes is the run interval applied when a config has none.
const DefaultIntervalMinutes = 20

// SourceConfig describes how one site is ingested: which URL to crawl and
// which extraction rules to apply per field. (vehicle_id, name) is unique.
//
// Rules are CSS selector expressions, optionally suffixed with "@attr" to
// extract an attribute instead of text (see the extract package).
// SectionRules holds one rule per line; the remaining fields hold a single
// rule each. Empty rules mean "not configured" and extraction falls back to
// the generic chains where one exists.
type SourceConfig struct {
	ID        string `db:"id"         json:"id"`
	VehicleID string `db:"vehicle_id" json:"vehicle_id"`
	Name      string `db:"name"       json:"name"`
	URL       string `db:"url"        json:"url"`

	// Extraction rules
	SectionRules     string `db:"section_rules"      json:"section_rules,omitempty"`
	ListingLinkRule  string `db:"listing_link_rule"  json:"listing_link_rule"`
	SectionNameRule  string `db:"section_name_rule"  json:"section_name_rule,omitempty"`
	DateRule         string `db:"date_rule"          json:"date_rule,omitempty"`
	TitleRule        string `db:"title_rule"         json:"title_rule"`
	SubtitleRule     string `db:"subtitle_rule"      json:"subtitle_rule,omitempty"`
	AuthorRule       string `db:"author_rule"        json:"author_rule,omitempty"`
	BodyRule         string `db:"body_rule"          json:"body_rule"`

	// Scheduling
	IntervalMinutes int        `db:"interval_minutes" json:"interval_minutes"`
	Enabled         bool       `db:"enabled"          json:"enabled"`
	LastRunAt       *time.Time `db:"last_run_at"      json:"last_run_at,omitempty"`
	Status          Status     `db:"status"           json:"status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SectionRuleList splits the multi-line section discovery rules into a slice,
// dropping blank lines.
func (c *SourceConfig) SectionRuleList() []string {
	var rules []string
	for _, line := range strings.Split(c.SectionRules, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rules = append(rules, line)
		}
	}
	return rules
}

// Interval returns the run interval as a duration, applying the default when
// the configured value is missing or non-positive.
func (c *SourceConfig) Interval() time.Duration {
	minutes := c.IntervalMinutes
	if minutes <= 0 {
		minutes = DefaultIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Due reports whether the config is eligible for a new run at the given
// instant: enabled, not currently running, and either never run or past its
// interval.
func (c *SourceConfig) Due(now time.Time) bool {
	if !c.Enabled || c.Status == StatusRunning {
		return false
	}
	if c.LastRunAt == nil {
		return true
	}
	return now.Sub(*c.LastRunAt) >= c.Interval()
}
