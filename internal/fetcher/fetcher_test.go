package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mindvault/internal/model"
)

type mockResponse struct {
	body        string
	statusCode  int
	contentType string
	err         error
}

// mockTransport answers by URL prefix and records every requested URL.
type mockTransport struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	requested []string
	userAgent string
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requested = append(m.requested, req.URL.String())
	m.userAgent = req.Header.Get("User-Agent")
	m.mu.Unlock()

	for prefix, r := range m.responses {
		if !strings.HasPrefix(req.URL.String(), prefix) {
			continue
		}
		if r.err != nil {
			return nil, r.err
		}
		h := http.Header{}
		if r.contentType != "" {
			h.Set("Content-Type", r.contentType)
		}
		return &http.Response{
			StatusCode: r.statusCode,
			Header:     h,
			Body:       io.NopCloser(bytes.NewBufferString(r.body)),
		}, nil
	}
	return nil, errors.New("no route for " + req.URL.String())
}

// blockingTransport waits for the request context to end.
type blockingTransport struct{}

func (blockingTransport) Do(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	return nil, req.Context().Err()
}

const articleHTML = `<!doctype html>
<html><head>
<title>  Fallback   Title </title>
<meta property="og:title" content="OG Title">
<meta name="twitter:title" content="Twitter Title">
<meta property="og:description" content="OG description">
<meta name="description" content="Plain description">
</head><body><h1>Body</h1></body></html>`

func TestParseHTML(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    model.Metadata
		wantErr error
	}{
		{
			name: "open graph wins",
			html: articleHTML,
			want: model.Metadata{Title: "OG Title", Description: "OG description"},
		},
		{
			name: "twitter card before meta",
			html: `<head><meta name="title" content="Meta"><meta name="twitter:title" content="Card">
<meta name="twitter:description" content="Card desc"><meta name="description" content="Meta desc"></head>`,
			want: model.Metadata{Title: "Card", Description: "Card desc"},
		},
		{
			name: "meta title before title element",
			html: `<head><title>Element</title><meta name="title" content="Meta"></head>`,
			want: model.Metadata{Title: "Meta"},
		},
		{
			name: "title element only, whitespace collapsed",
			html: "<head><title>\n  Hello\n  World </title></head>",
			want: model.Metadata{Title: "Hello World"},
		},
		{
			name: "empty og content is skipped",
			html: `<head><meta property="og:title" content="  "><title>Real</title></head>`,
			want: model.Metadata{Title: "Real"},
		},
		{
			name: "description only",
			html: `<head><meta name="description" content="Only desc"></head>`,
			want: model.Metadata{Description: "Only desc"},
		},
		{
			name:    "nothing found",
			html:    `<html><body><p>text</p></body></html>`,
			wantErr: ErrNoMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHTML(strings.NewReader(tt.html))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseHTML() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseHTML() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		responses map[string]mockResponse
		want      model.Metadata
		wantErr   error
		anyErr    bool
	}{
		{
			name: "html page",
			url:  "https://example.com/post",
			responses: map[string]mockResponse{
				"https://example.com/": {body: articleHTML, statusCode: 200, contentType: "text/html; charset=utf-8"},
			},
			want: model.Metadata{Title: "OG Title", Description: "OG description"},
		},
		{
			name: "non html content type",
			url:  "https://example.com/file.pdf",
			responses: map[string]mockResponse{
				"https://example.com/": {body: "%PDF", statusCode: 200, contentType: "application/pdf"},
			},
			wantErr: ErrNotHTML,
		},
		{
			name: "missing content type",
			url:  "https://example.com/raw",
			responses: map[string]mockResponse{
				"https://example.com/": {body: articleHTML, statusCode: 200},
			},
			wantErr: ErrNotHTML,
		},
		{
			name: "http error status",
			url:  "https://example.com/missing",
			responses: map[string]mockResponse{
				"https://example.com/": {body: "not found", statusCode: 404, contentType: "text/html"},
			},
			wantErr: ErrStatus,
		},
		{
			name: "network error",
			url:  "https://example.com/down",
			responses: map[string]mockResponse{
				"https://example.com/": {err: io.ErrUnexpectedEOF},
			},
			anyErr: true,
		},
		{
			name: "youtube via oembed",
			url:  "https://www.youtube.com/watch?v=abc",
			responses: map[string]mockResponse{
				"https://www.youtube.com/oembed": {
					body:       `{"title":"Go Concurrency Patterns","author_name":"Google TechTalks"}`,
					statusCode: 200,
				},
			},
			want: model.Metadata{Title: "Go Concurrency Patterns", Description: "Video by Google TechTalks"},
		},
		{
			name: "youtube short link without author",
			url:  "https://youtu.be/abc",
			responses: map[string]mockResponse{
				"https://www.youtube.com/oembed": {body: `{"title":"Short"}`, statusCode: 200},
			},
			want: model.Metadata{Title: "Short", Description: "YouTube video"},
		},
		{
			name: "oembed failure falls through to page",
			url:  "https://vimeo.com/123",
			responses: map[string]mockResponse{
				"https://vimeo.com/api/oembed.json": {body: "", statusCode: 403},
				"https://vimeo.com/123":             {body: articleHTML, statusCode: 200, contentType: "text/html"},
			},
			want: model.Metadata{Title: "OG Title", Description: "OG description"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &mockTransport{responses: tt.responses}
			f := New(tr)
			got, err := f.Fetch(context.Background(), tt.url)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fetch() error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.anyErr:
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchSendsUserAgent(t *testing.T) {
	tr := &mockTransport{responses: map[string]mockResponse{
		"https://example.com/": {body: articleHTML, statusCode: 200, contentType: "text/html"},
	}}
	f := New(tr, WithUserAgent("TestAgent/1.0"))
	if _, err := f.Fetch(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("TestAgent/1.0", tr.userAgent); diff != "" {
		t.Errorf("user agent mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchTimeout(t *testing.T) {
	f := New(blockingTransport{}, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := f.Fetch(context.Background(), "https://slow.example.com/")
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Fetch took %v, budget was not enforced", elapsed)
	}
}

func TestHTTPClientRejectsUnsafeRedirect(t *testing.T) {
	c := NewHTTPClient()
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1/admin", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if err := c.CheckRedirect(req, []*http.Request{{}}); err == nil {
		t.Error("expected redirect into loopback to be refused")
	}
}
