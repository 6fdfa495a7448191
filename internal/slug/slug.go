// Package slug builds filesystem-safe Markdown filenames from titles.
package slug

import (
	"regexp"
	"strings"
	"time"
)

const (
	ext          = ".md"
	maxKeywords  = 3
	fallbackWord = "note"
)

var (
	wordSplitRe = regexp.MustCompile(`[^a-z0-9]+`)
	unsafeRe    = regexp.MustCompile(`[^a-z0-9.-]`)
	dashesRe    = regexp.MustCompile(`-+`)
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "can": true,
	"this": true, "that": true,
}

// Keywords returns up to three distinct lower-case words of the title,
// skipping stop words and words of two characters or less. Only ASCII
// letters and digits form words. An empty result becomes ["note"].
func Keywords(title string) []string {
	var out []string
	for _, w := range wordSplitRe.Split(strings.ToLower(title), -1) {
		if len(w) <= 2 || stopWords[w] || contains(out, w) {
			continue
		}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	if len(out) == 0 {
		return []string{fallbackWord}
	}
	return out
}

// Filename composes "{kw1}-{kw2}-{YYYY-MM-DD}.md" from the title.
// The result always matches ^[a-z0-9-]+\.md$.
func Filename(title string, now time.Time) string {
	kws := Keywords(title)
	if len(kws) > 2 {
		kws = kws[:2]
	}
	name := strings.Join(kws, "-") + "-" + now.Format(time.DateOnly) + ext
	return sanitize(name)
}

// WithSuffix inserts "-{suffix}" before the extension.
func WithSuffix(filename, suffix string) string {
	base := strings.TrimSuffix(filename, ext)
	return sanitize(base + "-" + strings.ToLower(suffix) + ext)
}

func sanitize(name string) string {
	name = unsafeRe.ReplaceAllString(strings.ToLower(name), "-")
	name = dashesRe.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
