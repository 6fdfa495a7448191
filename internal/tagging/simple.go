package tagging

import (
	"sort"
	"strconv"
	"time"
	"unicode/utf8"
)

const longReadThreshold = 5000

// Simple tags items from a fixed domain and keyword table, marks long
// bodies and stamps the current year. Output is sorted.
type Simple struct {
	now func() time.Time
}

// NewSimple returns the table-driven strategy. A nil clock uses time.Now.
func NewSimple(now func() time.Time) *Simple {
	if now == nil {
		now = time.Now
	}
	return &Simple{now: now}
}

// Name implements Strategy.
func (s *Simple) Name() string { return NameSimple }

// Generate implements Strategy.
func (s *Simple) Generate(in Input) []string {
	var tags tagSet

	if in.URL != "" {
		if domain := lookupDomain(simpleDomains, in.URL); len(domain) > 0 {
			tags.add(domain[0])
		}
	}

	for _, t := range MatchAll(simpleKeywords, Doc{Title: in.Title, Content: in.Content}) {
		tags.add(t)
	}

	switch {
	case in.URL == "":
		tags.add("#note")
	case tags.len() == 0:
		tags.add("#article")
	}

	if utf8.RuneCountInString(in.Content) > longReadThreshold {
		tags.add("#long-read")
	}
	tags.add("#" + strconv.Itoa(s.now().Year()))

	out := append([]string(nil), tags.items...)
	sort.Strings(out)
	return out
}
