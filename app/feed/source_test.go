package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSourceFetch(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write(buildRSS(testItem{guid: "1", title: "One"}))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, server.Client(), "Their Side/test", 5*time.Second, 0)
	data, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected feed data")
	}
	if userAgent != "Their Side/test" {
		t.Errorf("Expected user agent 'Their Side/test', got '%s'", userAgent)
	}
	if source.Location() != server.URL {
		t.Errorf("Expected location '%s', got '%s'", server.URL, source.Location())
	}
}

func TestHTTPSourceStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, server.Client(), "", 5*time.Second, 0)
	_, err := source.Fetch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got: %v", err)
	}
	if fetchErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", fetchErr.StatusCode)
	}
}

func TestHTTPSourceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	source := NewHTTPSource(url, http.DefaultClient, "", time.Second, 10)
	_, err := source.Fetch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got: %v", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("Expected no status code for transport error, got %d", fetchErr.StatusCode)
	}
}

func TestHTTPSourceEndToEndProjection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buildRSS(
			testItem{guid: "1", title: "One"},
			testItem{guid: "2", title: "Launch", enclosures: []string{"a.mp3|audio/mpeg"}},
		))
	}))
	defer server.Close()

	projector := NewProjector(NewHTTPSource(server.URL, server.Client(), "", time.Second, 0), NewParser())
	episode, err := projector.GetEpisodeByID(context.Background(), "2")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if episode == nil || episode.Title != "2: Launch" {
		t.Errorf("Expected '2: Launch', got %+v", episode)
	}
}
