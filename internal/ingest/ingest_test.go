package ingest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsclip/newsclip/internal/domain"
	"github.com/newsclip/newsclip/internal/fetch"
	"github.com/newsclip/newsclip/internal/ingest"
	"github.com/newsclip/newsclip/internal/logger"
	"github.com/newsclip/newsclip/internal/runlog"
)

type memConfigStore struct {
	mu       sync.Mutex
	statuses []domain.Status
}

func (m *memConfigStore) UpdateStatus(_ context.Context, _ string, status domain.Status, _ *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	return nil
}

type memRunStore struct {
	mu       sync.Mutex
	finished *domain.Run
}

func (m *memRunStore) Create(_ context.Context, run *domain.Run) error {
	run.ID = "run-1"
	return nil
}

func (m *memRunStore) Finish(_ context.Context, run *domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *run
	m.finished = &saved
	return nil
}

type memContentStore struct {
	mu       sync.Mutex
	sections map[string]string
	articles map[string]*domain.Article
	updated  []*domain.Article
}

func newMemContentStore() *memContentStore {
	return &memContentStore{
		sections: map[string]string{},
		articles: map[string]*domain.Article{},
	}
}

func (m *memContentStore) GetOrCreateSection(_ context.Context, vehicleID, name string) (*domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sections[name]
	if !ok {
		id = "sec-" + name
		m.sections[name] = id
	}
	return &domain.Section{ID: id, VehicleID: vehicleID, Name: name}, nil
}

func (m *memContentStore) GetOrCreateArticle(_ context.Context, article *domain.Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.articles[article.URL]; ok {
		*article = *existing
		return false, nil
	}
	article.ID = "art-" + article.URL
	saved := *article
	m.articles[article.URL] = &saved
	return true, nil
}

func (m *memContentStore) UpdateArticle(_ context.Context, article *domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *article
	m.articles[article.URL] = &saved
	m.updated = append(m.updated, &saved)
	return nil
}

const homepageHTML = `<html><body>
<nav class="menu"><a href="/politica">Política</a></nav>
</body></html>`

const listingHTML = `<html><body>
<h2><a href="/noticia/1">Nova lei aprovada</a></h2>
<h2><a href="/noticia/2">Chuvas no interior</a></h2>
</body></html>`

const articleHTML = `<html><head><title>Nova lei aprovada - Portal</title>
<meta property="article:published_time" content="2025-08-20T11:30:00Z">
</head><body>
<span class="retranca">Política</span>
<h1 class="titulo">Nova lei aprovada</h1>
<h2 class="linha-fina">Texto segue para sanção</h2>
<span class="autor">Maria Silva</span>
<div class="materia"><p>Primeiro parágrafo.</p><p>Segundo parágrafo.</p></div>
</body></html>`

const bareArticleHTML = `<html><body><div class="materia"><p>Só corpo.</p></div></body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(homepageHTML))
	})
	mux.HandleFunc("/politica", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	})
	mux.HandleFunc("/noticia/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *domain.SourceConfig {
	return &domain.SourceConfig{
		ID:              "cfg-1",
		VehicleID:       "veh-1",
		Name:            "capa",
		URL:             baseURL,
		SectionRules:    "nav.menu a@href",
		ListingLinkRule: "h2 a@href",
		SectionNameRule: "span.retranca",
		TitleRule:       "h1.titulo",
		SubtitleRule:    "h2.linha-fina",
		AuthorRule:      "span.autor",
		BodyRule:        "div.materia p",
		Enabled:         true,
	}
}

func newOrchestrator(configs ingest.ConfigStore, runs ingest.RunStore, content ingest.ContentStore) *ingest.Orchestrator {
	client := fetch.NewClient(fetch.WithTimeout(5 * time.Second))
	return ingest.New(configs, runs, content, client, logger.NewNoOp(), ingest.WithWorkers(2))
}

func TestRun_CapturesArticles(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	configs := &memConfigStore{}
	runs := &memRunStore{}
	content := newMemContentStore()

	run, err := newOrchestrator(configs, runs, content).Run(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDone, run.Status)
	assert.Equal(t, 2, run.FoundCount)
	assert.Equal(t, 2, run.NewCount)
	assert.Equal(t, []domain.Status{domain.StatusRunning, domain.StatusDone}, configs.statuses)

	require.NotNil(t, runs.finished)
	assert.Equal(t, domain.StatusDone, runs.finished.Status)

	article := content.articles[srv.URL+"/noticia/1"]
	require.NotNil(t, article)
	assert.Equal(t, "Nova lei aprovada", article.Title)
	assert.Equal(t, "Texto segue para sanção", article.Subtitle)
	assert.Equal(t, "Maria Silva", article.Author)
	assert.Equal(t, "Primeiro parágrafo. Segundo parágrafo.", article.Body)
	require.NotNil(t, article.PublishedAt)
	assert.Equal(t, time.Date(2025, time.August, 20, 11, 30, 0, 0, time.UTC), article.PublishedAt.UTC())
	require.NotNil(t, article.SectionID)
	assert.Equal(t, "sec-Política", *article.SectionID)

	events := runlog.Decode(run.Log)
	require.NotEmpty(t, events)
	assert.Equal(t, runlog.LevelInfo, events[0].Level)
	last := events[len(events)-1]
	assert.Equal(t, runlog.LevelOK, last.Level)
	assert.Contains(t, last.Message, "2 found, 2 new")
}

func TestRun_HomepageFailureFailsRun(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	configs := &memConfigStore{}
	runs := &memRunStore{}

	run, err := newOrchestrator(configs, runs, newMemContentStore()).Run(context.Background(), testConfig(srv.URL))
	require.Error(t, err)

	assert.Equal(t, domain.StatusFailed, run.Status)
	assert.Equal(t, []domain.Status{domain.StatusRunning, domain.StatusFailed}, configs.statuses)

	// The failed run is still persisted together with its event log.
	require.NotNil(t, runs.finished)
	assert.Equal(t, domain.StatusFailed, runs.finished.Status)
	events := runlog.Decode(runs.finished.Log)
	require.NotEmpty(t, events)
	var sawError, sawFatal bool
	for _, ev := range events {
		if ev.Level == runlog.LevelError {
			sawError = true
		}
		if ev.Stage == "fatal" {
			sawFatal = true
		}
	}
	assert.True(t, sawError)
	assert.True(t, sawFatal)
}

func TestRun_KnownArticleIsBackfilledNotRecounted(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	content := newMemContentStore()
	for _, path := range []string{"/noticia/1", "/noticia/2"} {
		u := srv.URL + path
		content.articles[u] = &domain.Article{
			ID:        "art-" + u,
			VehicleID: "veh-1",
			URL:       u,
			Title:     "Nova lei aprovada",
			Body:      "Primeiro parágrafo. Segundo parágrafo.",
		}
	}

	run, err := newOrchestrator(&memConfigStore{}, &memRunStore{}, content).Run(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, 2, run.FoundCount)
	assert.Equal(t, 0, run.NewCount)

	// Missing author and date were filled in from the fresh extraction.
	require.Len(t, content.updated, 2)
	assert.Equal(t, "Maria Silva", content.updated[0].Author)
	require.NotNil(t, content.updated[0].PublishedAt)
}

func TestRun_ArticleWithoutTitleSkipped(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h2><a href="/noticia/vazia">x</a></h2></body></html>`))
	})
	mux.HandleFunc("/noticia/vazia", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(bareArticleHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.SectionRules = ""
	content := newMemContentStore()

	run, err := newOrchestrator(&memConfigStore{}, &memRunStore{}, content).Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDone, run.Status)
	assert.Equal(t, 1, run.FoundCount)
	assert.Equal(t, 0, run.NewCount)
	assert.Empty(t, content.articles)

	var skipped bool
	for _, ev := range runlog.Decode(run.Log) {
		if ev.Level == runlog.LevelSkip && ev.Stage == "article-title" {
			skipped = true
		}
	}
	assert.True(t, skipped)
}

const datelessArticleHTML = `<html><body>
<h1 class="titulo">Sem data publicada</h1>
<div class="materia"><p>Corpo sem qualquer marcação de data.</p></div>
</body></html>`

func TestRun_MissingDateUsesCaptureTime(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h2><a href="/noticia/sem-data">x</a></h2></body></html>`))
	})
	mux.HandleFunc("/noticia/sem-data", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(datelessArticleHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.SectionRules = ""
	content := newMemContentStore()

	before := time.Now()
	run, err := newOrchestrator(&memConfigStore{}, &memRunStore{}, content).Run(context.Background(), cfg)
	require.NoError(t, err)
	after := time.Now()

	assert.Equal(t, 1, run.NewCount)

	article := content.articles[srv.URL+"/noticia/sem-data"]
	require.NotNil(t, article)
	require.NotNil(t, article.PublishedAt)
	assert.False(t, article.PublishedAt.Before(before))
	assert.False(t, article.PublishedAt.After(after))

	var substituted bool
	for _, ev := range runlog.Decode(run.Log) {
		if ev.Level == runlog.LevelWarn && ev.Stage == "article-date-fallback" {
			substituted = true
		}
	}
	assert.True(t, substituted)
}

func TestRun_SectionLinkToHomepageNotRefetched(t *testing.T) {
	t.Parallel()

	var homeHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&homeHits, 1)
		_, _ = w.Write([]byte(`<html><body>
<nav class="menu"><a href="/">Capa</a></nav>
<h2><a href="/noticia/1">x</a></h2>
</body></html>`))
	})
	mux.HandleFunc("/noticia/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	run, err := newOrchestrator(&memConfigStore{}, &memRunStore{}, newMemContentStore()).Run(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, 1, run.FoundCount)
	assert.Equal(t, int32(1), atomic.LoadInt32(&homeHits))
}

func TestRun_AllSectionFetchesFailEndsEmpty(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><nav class="menu"><a href="/secao">Seção</a></nav></body></html>`))
	})
	mux.HandleFunc("/secao", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	run, err := newOrchestrator(&memConfigStore{}, &memRunStore{}, newMemContentStore()).Run(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	// Failed sections are skipped, not replaced by the homepage.
	assert.Equal(t, domain.StatusDone, run.Status)
	assert.Equal(t, 0, run.FoundCount)
	assert.Equal(t, 0, run.NewCount)
}
