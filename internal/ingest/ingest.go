// Package ingest runs the content capture pipeline for a source config: it
// fetches the configured homepage, discovers section listing pages, collects
// article links and processes each article through the extraction rules.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newsclip/newsclip/internal/domain"
	"github.com/newsclip/newsclip/internal/extract"
	"github.com/newsclip/newsclip/internal/fetch"
	"github.com/newsclip/newsclip/internal/logger"
	"github.com/newsclip/newsclip/internal/runlog"
	"github.com/newsclip/newsclip/internal/worker"
)

// ConfigStore is the slice of config persistence the orchestrator needs.
type ConfigStore interface {
	UpdateStatus(ctx context.Context, id string, status domain.Status, lastRunAt *time.Time) error
}

// RunStore persists runs.
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	Finish(ctx context.Context, run *domain.Run) error
}

// ContentStore persists captured articles and their sections.
type ContentStore interface {
	GetOrCreateSection(ctx context.Context, vehicleID, name string) (*domain.Section, error)
	GetOrCreateArticle(ctx context.Context, article *domain.Article) (bool, error)
	UpdateArticle(ctx context.Context, article *domain.Article) error
}

// Fetcher retrieves and parses pages.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Document, error)
}

// Orchestrator executes ingestion runs.
type Orchestrator struct {
	configs ConfigStore
	runs    RunStore
	content ContentStore
	fetcher Fetcher
	logger  logger.Interface
	workers int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the article processing concurrency.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// New creates an ingestion orchestrator.
func New(configs ConfigStore, runs RunStore, content ContentStore, fetcher Fetcher, log logger.Interface, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		configs: configs,
		runs:    runs,
		content: content,
		fetcher: fetcher,
		logger:  log,
		workers: worker.DefaultPoolSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one ingestion run for cfg. It always returns the run record;
// the error reports why the run failed, if it did. A failed run is still
// persisted together with its event log.
func (o *Orchestrator) Run(ctx context.Context, cfg *domain.SourceConfig) (*domain.Run, error) {
	rec := runlog.NewRecorder()
	rec.Info("start", fmt.Sprintf("run started for %s", cfg.Name), runlog.URL(cfg.URL))

	run := &domain.Run{ConfigID: cfg.ID, Status: domain.StatusRunning, StartedAt: time.Now()}
	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	startedAt := run.StartedAt
	if err := o.configs.UpdateStatus(ctx, cfg.ID, domain.StatusRunning, &startedAt); err != nil {
		return nil, fmt.Errorf("failed to mark config running: %w", err)
	}

	runErr := o.executeSafely(ctx, cfg, run, rec)
	if runErr != nil {
		rec.Error("fatal", "run aborted", runErr, runlog.URL(cfg.URL))
		run.Status = domain.StatusFailed
	} else {
		run.Status = domain.StatusDone
		rec.OK("start", fmt.Sprintf("run finished: %d found, %d new", run.FoundCount, run.NewCount))
	}

	run.Log = rec.Serialize()
	if err := o.runs.Finish(ctx, run); err != nil {
		o.logger.Error("failed to finish run", "run_id", run.ID, "error", err)
	}
	if err := o.configs.UpdateStatus(ctx, cfg.ID, run.Status, nil); err != nil {
		o.logger.Error("failed to update config status", "config_id", cfg.ID, "error", err)
	}

	return run, runErr
}

// executeSafely runs execute and converts a panic into a run failure, so a
// hostile page or rule never takes down the scheduler process.
func (o *Orchestrator) executeSafely(ctx context.Context, cfg *domain.SourceConfig, run *domain.Run, rec *runlog.Recorder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during run: %v", r)
		}
	}()
	return o.execute(ctx, cfg, run, rec)
}

// execute performs the fetch/discover/process stages, mutating run's
// counters. The homepage fetch is the only fatal step.
func (o *Orchestrator) execute(ctx context.Context, cfg *domain.SourceConfig, run *domain.Run, rec *runlog.Recorder) error {
	home, err := o.fetchPage(ctx, rec, "http-get", cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch homepage: %w", err)
	}

	listings := o.discoverListings(ctx, cfg, home, rec)

	links := o.collectArticleLinks(cfg, listings, rec)
	run.FoundCount = len(links)
	rec.Info("listing", fmt.Sprintf("%d article links found", len(links)))

	pool, err := worker.NewPool(o.workers)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}

	for _, link := range links {
		link := link
		task := func(taskCtx context.Context) int {
			return o.processArticle(taskCtx, cfg, link, rec)
		}
		if submitErr := pool.Submit(ctx, task); submitErr != nil {
			rec.Error("article", "gave up submitting remaining articles", submitErr)
			break
		}
	}
	run.NewCount = pool.Wait()

	return nil
}

// fetchPage fetches a page and logs the outcome under stage.
func (o *Orchestrator) fetchPage(ctx context.Context, rec *runlog.Recorder, stage, rawURL string) (*fetch.Document, error) {
	doc, err := o.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		rec.Error(stage, "fetch failed", err, runlog.URL(rawURL))
		return nil, err
	}
	rec.OK(stage, "GET 200", runlog.URL(rawURL))
	return doc, nil
}

// discoverListings resolves the listing pages to scan for article links.
// Section rules are evaluated against the homepage; each matched link becomes
// a listing page. Without section rules, or when none match, the homepage
// itself is the sole listing. A section that fails to fetch is logged and
// skipped.
func (o *Orchestrator) discoverListings(ctx context.Context, cfg *domain.SourceConfig, home *fetch.Document, rec *runlog.Recorder) []*fetch.Document {
	var sectionURLs []string
	seen := map[string]bool{}

	for _, rule := range cfg.SectionRuleList() {
		links, err := extract.Links(home.Document, home.URL, rule)
		if err != nil {
			rec.Error("extract", "bad section rule", err, runlog.Rule(rule))
			continue
		}
		if len(links) == 0 {
			rec.Warn("editorial", "section rule matched nothing", runlog.Rule(rule))
			continue
		}
		for _, link := range links {
			if !isHTTP(link) || seen[link] {
				continue
			}
			seen[link] = true
			sectionURLs = append(sectionURLs, link)
		}
	}

	if len(sectionURLs) == 0 {
		rec.Info("editorial", "no sections discovered, using homepage")
		return []*fetch.Document{home}
	}
	rec.Info("editorial", fmt.Sprintf("%d sections discovered", len(sectionURLs)))

	listings := make([]*fetch.Document, 0, len(sectionURLs))
	for _, u := range sectionURLs {
		// A section link back to the homepage reuses the page already
		// fetched.
		if sameURL(u, cfg.URL) || sameURL(u, home.URL.String()) {
			listings = append(listings, home)
			continue
		}
		doc, err := o.fetchPage(ctx, rec, "editorial", u)
		if err != nil {
			continue
		}
		listings = append(listings, doc)
	}
	return listings
}

// collectArticleLinks extracts article URLs from the listing pages, applying
// the configured listing rule first and the generic fallbacks after it.
// Returned links are unique and restricted to http(s).
func (o *Orchestrator) collectArticleLinks(cfg *domain.SourceConfig, listings []*fetch.Document, rec *runlog.Recorder) []string {
	rules := extract.GenericListingRules
	if cfg.ListingLinkRule != "" {
		rules = append([]string{cfg.ListingLinkRule}, rules...)
	}

	var ordered []string
	seen := map[string]bool{}

	for _, doc := range listings {
		var found []string
		for _, rule := range rules {
			links, err := extract.Links(doc.Document, doc.URL, rule)
			if err != nil {
				rec.Error("extract", "bad listing rule", err, runlog.Rule(rule))
				continue
			}
			if len(links) > 0 {
				found = links
				break
			}
		}
		if len(found) == 0 {
			rec.Warn("listing", "no article links on page", runlog.URL(doc.URL.String()))
			continue
		}
		for _, link := range found {
			if !isHTTP(link) || seen[link] {
				continue
			}
			seen[link] = true
			ordered = append(ordered, link)
		}
	}

	return ordered
}

func isHTTP(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

// sameURL ignores a trailing slash, so "host/" matches "host".
func sameURL(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
