package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"mindvault/internal/model"
)

// Provider is an oEmbed endpoint serving a set of hosts.
type Provider struct {
	Name     string
	Hosts    []string
	Endpoint string
}

// DefaultProviders lists the video hosts asked through oEmbed before a page fetch.
var DefaultProviders = []Provider{
	{
		Name:     "YouTube",
		Hosts:    []string{"youtube.com", "youtu.be"},
		Endpoint: "https://www.youtube.com/oembed",
	},
	{
		Name:     "Vimeo",
		Hosts:    []string{"vimeo.com"},
		Endpoint: "https://vimeo.com/api/oembed.json",
	},
}

type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

func (f *Fetcher) providerFor(rawURL string) (Provider, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Provider{}, false
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range f.providers {
		for _, h := range p.Hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p, true
			}
		}
	}
	return Provider{}, false
}

// FetchOEmbed asks the provider's oEmbed endpoint about rawURL.
func (f *Fetcher) FetchOEmbed(ctx context.Context, p Provider, rawURL string) (model.Metadata, error) {
	q := url.Values{}
	q.Set("url", rawURL)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.Metadata{}, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}

	var doc oembedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&doc); err != nil {
		return model.Metadata{}, fmt.Errorf("decode oembed: %w", err)
	}

	title := cleanText(doc.Title)
	if title == "" {
		return model.Metadata{}, errors.New("oembed: empty title")
	}

	desc := p.Name + " video"
	if author := cleanText(doc.AuthorName); author != "" {
		desc = "Video by " + author
	}
	return model.Metadata{Title: title, Description: desc}, nil
}

// cleanText trims s and collapses internal runs of whitespace.
func cleanText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
