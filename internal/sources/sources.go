// Package sources loads vehicle and source config definitions from a YAML
// file and seeds them into the database.
package sources

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newsclip/newsclip/internal/domain"
)

var (
	// ErrNoSources indicates no sources were found in the file.
	ErrNoSources = errors.New("no sources found in file")
	// ErrMissingRequiredField indicates a required field is missing.
	ErrMissingRequiredField = errors.New("missing required field")
)

// File is the top-level structure of a sources YAML file.
type File struct {
	Sources []Source `yaml:"sources"`
}

// Source describes one media vehicle together with its ingestion configs.
type Source struct {
	Name      string   `yaml:"name"`
	MediaType string   `yaml:"media_type"`
	Country   string   `yaml:"country"`
	State     string   `yaml:"state"`
	City      string   `yaml:"city"`
	URL       string   `yaml:"url"`
	Notes     string   `yaml:"notes"`
	Configs   []Config `yaml:"configs"`
}

// Config describes one ingestion config of a source.
type Config struct {
	Name            string   `yaml:"name"`
	URL             string   `yaml:"url"`
	SectionRules    []string `yaml:"section_rules"`
	ListingLinkRule string   `yaml:"listing_link_rule"`
	SectionNameRule string   `yaml:"section_name_rule"`
	DateRule        string   `yaml:"date_rule"`
	TitleRule       string   `yaml:"title_rule"`
	SubtitleRule    string   `yaml:"subtitle_rule"`
	AuthorRule      string   `yaml:"author_rule"`
	BodyRule        string   `yaml:"body_rule"`
	IntervalMinutes int      `yaml:"interval_minutes"`
	Enabled         *bool    `yaml:"enabled"`
}

// Load reads and validates a sources file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if len(file.Sources) == 0 {
		return nil, ErrNoSources
	}

	for i := range file.Sources {
		if err := file.Sources[i].validate(); err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i, file.Sources[i].Name, err)
		}
	}

	return &file, nil
}

func (s *Source) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequiredField)
	}
	if s.URL == "" {
		return fmt.Errorf("%w: url", ErrMissingRequiredField)
	}
	if _, err := url.ParseRequestURI(s.URL); err != nil {
		return fmt.Errorf("invalid url %q: %w", s.URL, err)
	}
	for i := range s.Configs {
		cfg := &s.Configs[i]
		if cfg.Name == "" {
			return fmt.Errorf("%w: configs[%d].name", ErrMissingRequiredField, i)
		}
		if cfg.URL == "" {
			cfg.URL = s.URL
		}
	}
	return nil
}

// mediaType maps the YAML value onto the domain enum, defaulting to site.
func (s *Source) mediaType() domain.MediaType {
	switch domain.MediaType(s.MediaType) {
	case domain.MediaSite, domain.MediaBlog, domain.MediaMagazine,
		domain.MediaTelevision, domain.MediaRadio,
		domain.MediaPodcast, domain.MediaVideocast:
		return domain.MediaType(s.MediaType)
	default:
		return domain.MediaSite
	}
}
