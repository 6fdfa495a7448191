// Package tagging derives hashtag sets for saved items.
//
// Two strategies exist: Weighted scores words from the title, description
// and caption, while Simple matches a fixed domain and keyword table. Both
// are deterministic for identical input.
package tagging

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Names of the available strategies.
const (
	NameWeighted = "weighted"
	NameSimple   = "simple"
)

// MaxTags caps the number of tags produced by Weighted.
const MaxTags = 6

// DefaultTag is emitted when no other tag could be derived.
const DefaultTag = "#Content"

// Input is everything a strategy may look at.
type Input struct {
	Title       string
	Description string
	Caption     string
	// Content is the body the simple strategy matches keywords in: the
	// note text for text saves, the page description for URL saves.
	Content   string
	MediaType string
	URL       string
}

// Strategy generates an ordered list of hashtags.
type Strategy interface {
	Name() string
	Generate(in Input) []string
}

// ByName returns the strategy registered under name.
func ByName(name string, now func() time.Time) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameWeighted:
		return NewWeighted(), nil
	case NameSimple:
		return NewSimple(now), nil
	default:
		return nil, fmt.Errorf("unknown tag strategy %q", name)
	}
}

// hostOf returns the lower-cased host of rawURL without a leading "www.".
func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

func lookupDomain(table []domainTags, rawURL string) []string {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	for _, d := range table {
		if strings.Contains(host, d.Domain) {
			return d.Tags
		}
	}
	return nil
}
