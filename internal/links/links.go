// Package links classifies user input as URL or text, validates URLs
// against internal network targets and strips tracking parameters.
package links

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// ErrUnsafeURL is returned by Check for URLs that must not be fetched.
var ErrUnsafeURL = errors.New("unsafe url")

var (
	urlPrefix = regexp.MustCompile(`^https?://`)
	urlToken  = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")
)

// Hosts matching any of these patterns are never fetched.
var blockedHosts = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^127\.`),
	regexp.MustCompile(`(?i)^10\.`),
	regexp.MustCompile(`(?i)^172\.(1[6-9]|2[0-9]|3[0-1])\.`),
	regexp.MustCompile(`(?i)^192\.168\.`),
	regexp.MustCompile(`(?i)^localhost`),
	regexp.MustCompile(`(?i)^169\.254\.`),
	regexp.MustCompile(`(?i)^0\.0\.0\.0$`),
	regexp.MustCompile(`(?i)^::1$`),
}

var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"msclkid": true,
	"mc_cid":  true,
	"mc_eid":  true,
	"_ga":     true,
	"_gl":     true,
	"ref":     true,
	"source":  true,
}

// Classification is the outcome of Classify.
type Classification struct {
	IsURL bool
	// URL is the trimmed input when IsURL is set.
	URL string
	// Text is the trimmed input when IsURL is not set.
	Text string
}

// Classify treats content as a URL only when, after trimming, it starts
// with http:// or https://. URLs embedded in longer text are not detected.
func Classify(content string) Classification {
	s := strings.TrimSpace(content)
	if urlPrefix.MatchString(s) {
		return Classification{IsURL: true, URL: s}
	}
	return Classification{Text: s}
}

// ExtractAll returns every safe http(s) token in text, cleaned, in order of appearance.
func ExtractAll(text string) []string {
	var out []string
	for _, tok := range urlToken.FindAllString(text, -1) {
		if !IsSafe(tok) {
			continue
		}
		out = append(out, Clean(tok))
	}
	return out
}

// Extract returns the first safe http(s) token in text, cleaned.
func Extract(text string) (string, bool) {
	all := ExtractAll(text)
	if len(all) == 0 {
		return "", false
	}
	return all[0], true
}

// IsSafe reports whether raw is an http(s) URL with a host outside the
// loopback and private ranges.
func IsSafe(raw string) bool {
	return Check(raw) == nil
}

// Check is IsSafe with a reason.
func Check(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrUnsafeURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty host", ErrUnsafeURL)
	}
	for _, re := range blockedHosts {
		if re.MatchString(host) {
			return fmt.Errorf("%w: blocked host %q", ErrUnsafeURL, host)
		}
	}
	// IP literals in any notation, e.g. IPv4-mapped IPv6.
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
			ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return fmt.Errorf("%w: blocked address %q", ErrUnsafeURL, host)
		}
	}
	return nil
}

// Clean removes tracking query parameters and the fragment. The remaining
// parameters keep their original order and encoding. On parse failure the
// input is returned unchanged.
func Clean(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	var kept []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if isTracking(key) {
			continue
		}
		kept = append(kept, pair)
	}

	u.RawQuery = strings.Join(kept, "&")
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

func isTracking(key string) bool {
	k := strings.ToLower(key)
	return strings.HasPrefix(k, "utm_") || trackingParams[k]
}

// TitleFromURL derives a readable title from the last path segment of raw,
// or from the host when the path is empty. It returns "" when raw cannot be parsed.
func TitleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	segment := ""
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segment = s
		}
	}
	if segment == "" {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}

	segment = strings.TrimSuffix(segment, path.Ext(segment))
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)

	words := strings.Fields(segment)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// StripURLs removes every http(s) token from text and collapses the
// surrounding whitespace.
func StripURLs(text string) string {
	return strings.Join(strings.Fields(urlToken.ReplaceAllString(text, " ")), " ")
}
