package tagging

import "strings"

// Rule attaches Tag to documents whose title or content contains Keyword.
// Matching is case-insensitive and on literal substrings, so "ai" also
// matches "maintain".
type Rule struct {
	Keyword string
	Tag     string
}

// Doc is the text a rule is matched against.
type Doc struct {
	Title   string
	Content string
}

// Matches reports whether the rule matches d.
func (r Rule) Matches(d Doc) bool {
	if r.Keyword == "" {
		return false
	}
	text := strings.ToLower(d.Title + " " + d.Content)
	return strings.Contains(text, strings.ToLower(r.Keyword))
}

// MatchAll returns the tags of every matching rule, in rule order, without duplicates.
func MatchAll(rules []Rule, d Doc) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range rules {
		if r.Matches(d) && !seen[r.Tag] {
			seen[r.Tag] = true
			out = append(out, r.Tag)
		}
	}
	return out
}

// MatchFirst returns the tag of the first matching rule.
func MatchFirst(rules []Rule, d Doc) (string, bool) {
	for _, r := range rules {
		if r.Matches(d) {
			return r.Tag, true
		}
	}
	return "", false
}

func containsRules(tag string, keywords ...string) []Rule {
	rules := make([]Rule, 0, len(keywords))
	for _, k := range keywords {
		rules = append(rules, Rule{Keyword: k, Tag: tag})
	}
	return rules
}
