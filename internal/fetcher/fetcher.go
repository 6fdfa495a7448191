// Package fetcher extracts title and description metadata for saved URLs.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mindvault/internal/links"
	"mindvault/internal/model"
)

// DefaultUserAgent is sent with page requests. Several sites serve stripped
// pages to non-browser agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodySize = 2 * 1024 * 1024

var (
	// ErrStatus is wrapped with the HTTP status code of a non-2xx response.
	ErrStatus = errors.New("unexpected status")
	// ErrNotHTML is returned when a page responds with a non-HTML content type.
	ErrNotHTML = errors.New("response is not html")
	// ErrNoMetadata is returned when a page was parsed but carried neither a title nor a description.
	ErrNoMetadata = errors.New("no metadata found")
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads pages and oEmbed documents and extracts metadata from them.
type Fetcher struct {
	client    HTTPClient
	timeout   time.Duration
	userAgent string
	providers []Provider
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the wall-clock budget of a single Fetch call.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithProviders replaces DefaultProviders.
func WithProviders(p []Provider) Option {
	return func(f *Fetcher) {
		f.providers = p
	}
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    client,
		timeout:   5 * time.Second,
		userAgent: DefaultUserAgent,
		providers: DefaultProviders,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewHTTPClient returns an http.Client that follows at most 10 redirects and
// refuses to follow a redirect into a blocked network.
func NewHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return links.Check(req.URL.String())
		},
	}
}

// Fetch returns metadata for rawURL. Known video hosts are asked through
// their oEmbed endpoint first; any failure there falls through to a plain
// page fetch. The returned metadata may be partial. A non-nil error means
// neither stage produced anything usable.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (model.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if p, ok := f.providerFor(rawURL); ok {
		md, err := f.FetchOEmbed(ctx, p, rawURL)
		if err == nil {
			return md, nil
		}
		if ctx.Err() != nil {
			return model.Metadata{}, fmt.Errorf("oembed: %w", err)
		}
	}

	return f.FetchHTML(ctx, rawURL)
}

// FetchHTML downloads rawURL and parses its meta tags.
func (f *Fetcher) FetchHTML(ctx context.Context, rawURL string) (model.Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Metadata{}, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "text/html" {
		return model.Metadata{}, fmt.Errorf("%w: %q", ErrNotHTML, ct)
	}

	return ParseHTML(io.LimitReader(resp.Body, maxBodySize))
}

// ParseHTML extracts the title and description from an HTML document.
//
// Title priority: og:title, twitter:title, meta name=title, <title>.
// Description priority: og:description, twitter:description, meta name=description.
func ParseHTML(r io.Reader) (model.Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	md := model.Metadata{
		Title: firstNonEmpty(
			metaContent(doc, `meta[property="og:title"]`),
			metaContent(doc, `meta[name="twitter:title"]`),
			metaContent(doc, `meta[name="title"]`),
			cleanText(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			metaContent(doc, `meta[property="og:description"]`),
			metaContent(doc, `meta[name="twitter:description"]`),
			metaContent(doc, `meta[name="description"]`),
		),
	}
	if md.Title == "" && md.Description == "" {
		return md, ErrNoMetadata
	}
	return md, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	var out string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = cleanText(s.AttrOr("content", ""))
		return out == ""
	})
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
