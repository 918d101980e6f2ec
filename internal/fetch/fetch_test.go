package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsclip/newsclip/internal/fetch"
)

func TestFetch_ParsesDocument(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Manchete</h1><a href="/n/1">link</a></body></html>`))
	}))
	defer srv.Close()

	client := fetch.NewClient()
	doc, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Manchete", doc.Find("h1").Text())
	require.NotNil(t, doc.URL)
	assert.Equal(t, srv.URL, doc.URL.Scheme+"://"+doc.URL.Host)
}

func TestFetch_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := fetch.NewClient()
	_, err := client.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *fetch.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestFetch_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := fetch.NewClient(fetch.WithTimeout(20 * time.Millisecond))
	_, err := client.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var transportErr *fetch.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	t.Parallel()

	client := fetch.NewClient(fetch.WithTimeout(time.Second))
	_, err := client.Fetch(context.Background(), "http://127.0.0.1:1/")
	require.Error(t, err)

	var transportErr *fetch.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestFetch_CustomUserAgent(t *testing.T) {
	t.Parallel()

	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	client := fetch.NewClient(fetch.WithUserAgent("custom-agent/2.0"))
	_, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "custom-agent/2.0", seen)
}
