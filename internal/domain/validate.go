// Package domain – content validation and derivation helpers.
//
// The functions in this file are pure and never return errors: callers treat
// a false boolean as a validation failure and map it to a service-level error.
// Derivation helpers (slug, summary, reading time) are deterministic so the
// same content always produces the same derived fields.
package domain

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// TitleMinLen and TitleMaxLen bound the trimmed title length.
	TitleMinLen = 3
	TitleMaxLen = 200

	// ContentMinLen is the minimum trimmed content length.
	ContentMinLen = 10

	// SlugMaxLen caps generated slugs.
	SlugMaxLen = 200

	// SummaryMaxLen caps the derived summary (before the trailing ellipsis).
	SummaryMaxLen = 200

	// wordsPerMinute is the reading speed assumed by ReadingTime.
	wordsPerMinute = 200
)

// ValidTitle reports whether the trimmed title length is within [3,200].
func ValidTitle(title string) bool {
	n := len([]rune(strings.TrimSpace(title)))
	return n >= TitleMinLen && n <= TitleMaxLen
}

// ValidContent reports whether the trimmed content is at least 10 runes long.
func ValidContent(content string) bool {
	return len([]rune(strings.TrimSpace(content))) >= ContentMinLen
}

// SanitizeTags trims, lower-cases, drops empties, and deduplicates tags while
// preserving the order of first occurrence.
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// slugInvalidRE matches characters not allowed in a slug (anything that is
// not a lowercase ASCII letter, digit, space, or hyphen).
var slugInvalidRE = regexp.MustCompile(`[^a-z0-9 -]+`)

// slugSpaceRE collapses runs of whitespace for hyphenation.
var slugSpaceRE = regexp.MustCompile(`\s+`)

// slugHyphenRE collapses repeated hyphens.
var slugHyphenRE = regexp.MustCompile(`-{2,}`)

// GenerateSlug derives a URL-safe slug from a title: lower-case, diacritics
// stripped, non-alphanumerics removed, whitespace collapsed to single
// hyphens, repeated hyphens collapsed, truncated to SlugMaxLen.
//
//	GenerateSlug("Olá Mundo!") == "ola-mundo"
func GenerateSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = stripDiacritics(s)
	s = slugInvalidRE.ReplaceAllString(s, "")
	s = slugSpaceRE.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphenRE.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if r := []rune(s); len(r) > SlugMaxLen {
		s = strings.Trim(string(r[:SlugMaxLen]), "-")
	}
	return s
}

// stripDiacritics decomposes the string (NFD) and removes combining marks, so
// "é" becomes "e". Unconvertible input is returned as-is.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Summarize derives the short summary shown in listings: the article content
// is rendered from Markdown, stripped of HTML tags, whitespace-collapsed, and
// clipped to SummaryMaxLen runes with a trailing ellipsis when truncated.
//
// Content that is already HTML passes through the renderer unchanged and is
// stripped the same way.
func Summarize(content string) string {
	html := blackfriday.Run([]byte(content))
	text := stripHTML(string(html))
	text = slugSpaceRE.ReplaceAllString(strings.TrimSpace(text), " ")
	r := []rune(text)
	if len(r) <= SummaryMaxLen {
		return text
	}
	return strings.TrimSpace(string(r[:SummaryMaxLen])) + "…"
}

// stripHTML extracts the text content of an HTML fragment. On parse failure
// the raw input is returned; the summary is cosmetic, not load-bearing.
func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return doc.Text()
}

// ReadingTime estimates reading minutes as ceil(words / 200). Non-empty
// content never reports zero minutes.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / float64(wordsPerMinute)))
}
