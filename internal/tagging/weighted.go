package tagging

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const (
	titleWeight       = 3.0
	descriptionWeight = 1.5
	captionWeight     = 1.0
	priorityBoost     = 2.0

	maxDomainTags = 3
	maxCandidates = 15
)

var (
	wordRe     = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9]{2,}\b`)
	nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Weighted ranks words by where they occur and favours known technology
// and platform names.
type Weighted struct{}

// NewWeighted returns the weighted keyword strategy.
func NewWeighted() *Weighted {
	return &Weighted{}
}

// Name implements Strategy.
func (w *Weighted) Name() string { return NameWeighted }

// Generate implements Strategy.
func (w *Weighted) Generate(in Input) []string {
	var tags tagSet

	if in.URL != "" {
		domain := lookupDomain(weightedDomains, in.URL)
		if len(domain) > maxDomainTags {
			domain = domain[:maxDomainTags]
		}
		for _, t := range domain {
			tags.add(t)
		}
	}

	for _, kw := range scoreKeywords(in.Title, in.Description, in.Caption) {
		if tags.len() >= MaxTags {
			break
		}
		if tag, ok := priorityKeywords[strings.ToLower(kw.word)]; ok {
			tags.add(tag)
			continue
		}
		if tag := normalizeTag(kw.word); len(tag) >= 3 {
			tags.add(tag)
		}
	}

	if tags.len() < MaxTags {
		text := strings.ToLower(in.Title + " " + in.Description + " " + in.Caption)
		for _, c := range categories {
			if _, ok := MatchFirst(c.Rules, Doc{Content: text}); ok {
				tags.add(c.Name)
				break
			}
		}
	}

	if in.MediaType != "" && tags.len() < MaxTags {
		if tag, ok := mediaTags[strings.ToLower(in.MediaType)]; ok {
			tags.add(tag)
		}
	}

	if tags.len() == 0 {
		return []string{DefaultTag}
	}
	out := make([]string, 0, tags.len())
	for _, t := range tags.items {
		out = append(out, "#"+t)
	}
	return out
}

type scoredWord struct {
	word  string
	score float64
	order int
}

// scoreKeywords returns the best candidates, highest score first. Words are
// keyed case-insensitively and keep the casing they were first seen with.
func scoreKeywords(title, description, caption string) []scoredWord {
	byKey := make(map[string]*scoredWord)
	var words []*scoredWord

	collect := func(text string, weight float64) {
		for _, w := range tokenize(text) {
			key := strings.ToLower(w)
			sw, ok := byKey[key]
			if !ok {
				sw = &scoredWord{word: w, order: len(words)}
				byKey[key] = sw
				words = append(words, sw)
			}
			sw.score += weight
		}
	}
	collect(title, titleWeight)
	collect(description, descriptionWeight)
	collect(caption, captionWeight)

	out := make([]scoredWord, 0, len(words))
	for _, sw := range words {
		if _, ok := priorityKeywords[strings.ToLower(sw.word)]; ok {
			sw.score *= priorityBoost
		}
		out = append(out, *sw)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].order < out[j].order
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func tokenize(text string) []string {
	var out []string
	for _, w := range wordRe.FindAllString(text, -1) {
		if !stopWords[strings.ToLower(w)] {
			out = append(out, w)
		}
	}
	return out
}

// normalizeTag strips non-alphanumerics and capitalizes the first letter,
// leaving already capitalized words (camelCase, acronyms) untouched.
func normalizeTag(word string) string {
	s := nonAlnumRe.ReplaceAllString(word, "")
	if s == "" {
		return ""
	}
	r := []rune(s)
	if !unicode.IsUpper(r[0]) {
		s = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return s
}

// tagSet keeps insertion order and drops duplicates.
type tagSet struct {
	items []string
	seen  map[string]bool
}

func (s *tagSet) add(tag string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[tag] {
		return
	}
	s.seen[tag] = true
	s.items = append(s.items, tag)
}

func (s *tagSet) len() int { return len(s.items) }
