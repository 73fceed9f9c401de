package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const articleHTML = `
<!DOCTYPE html>
<html>
<head>
	<title>Episode 2: Launch</title>
</head>
<body>
	<header>
		<h1>Site Header</h1>
		<nav>Navigation</nav>
	</header>
	<main>
		<article>
			<h1>Launch</h1>
			<p>In this episode we talk about the main content of the launch. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
			<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
			<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to listeners.</p>
		</article>
	</main>
	<footer>
		<p>Copyright 2024</p>
	</footer>
</body>
</html>
`

func TestContentExtractorRun(t *testing.T) {
	extractor := NewContentExtractor(http.DefaultClient, "")

	result, err := extractor.Run([]byte(articleHTML), nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "main content of the launch") {
		t.Errorf("Expected extracted content to contain article text")
	}
	if strings.Contains(result, "Copyright 2024") {
		t.Errorf("Expected extracted content to exclude footer")
	}
}

func TestContentExtractorRunEmpty(t *testing.T) {
	extractor := NewContentExtractor(http.DefaultClient, "")

	if _, err := extractor.Run(nil, nil); err == nil {
		t.Error("Expected error for empty HTML data")
	}
}

func TestContentExtractorExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	extractor := NewContentExtractor(server.Client(), "Their Side/test")
	result, err := extractor.Extract(context.Background(), server.URL+"/episodes/2")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(result, "main content of the launch") {
		t.Errorf("Expected extracted content to contain article text, got: %s", result)
	}
}

func TestContentExtractorExtractHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	extractor := NewContentExtractor(server.Client(), "")
	if _, err := extractor.Extract(context.Background(), server.URL); err == nil {
		t.Error("Expected error for HTTP 404")
	}
}
