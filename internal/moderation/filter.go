// Package moderation screens queries and results against a blocklist of terms.
package moderation

import (
	"slices"
	"strings"
	"sync"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonesrussell/quillglow/internal/domain"
)

// DefaultTerms is the built-in blocklist.
var DefaultTerms = []string{
	"porn", "xxx", "sex", "adult", "nude", "nsfw", "18+", "explicit", "erotic",
	"hentai", "fetish", "webcam", "escort", "dating", "hookup", "onlyfans",
	"sexy", "hot girls", "hot boys",
}

// Filter matches text against an immutable term list in a single pass.
// The zero value blocks nothing.
//
// Matching is a case-insensitive substring test, so innocent words that
// contain a term ("Middlesex", "adulthood") are blocked too. Accents and
// compatibility forms are folded first: "ｐｏｒｎ" and "pórn" match "porn".
type Filter struct {
	terms []string

	// The matcher keeps per-scan state, so scans are serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// New builds a filter from terms. Terms are folded, trimmed and de-duplicated;
// blank entries are ignored.
func New(terms ...[]string) *Filter {
	var merged []string
	for _, list := range terms {
		for _, term := range list {
			term = fold(strings.TrimSpace(term))
			if term != "" && !slices.Contains(merged, term) {
				merged = append(merged, term)
			}
		}
	}

	f := &Filter{terms: merged}
	if len(merged) > 0 {
		f.matcher = ahocorasick.NewStringMatcher(merged)
	}
	return f
}

// Default builds a filter from DefaultTerms plus any extra terms.
func Default(extra ...string) *Filter {
	return New(DefaultTerms, extra)
}

// Terms returns a copy of the filter's terms.
func (f *Filter) Terms() []string {
	return slices.Clone(f.terms)
}

// Blocked reports whether text contains any term.
func (f *Filter) Blocked(text string) bool {
	if text == "" || f.matcher == nil {
		return false
	}

	folded := []byte(fold(text))

	f.mu.Lock()
	hits := f.matcher.Match(folded)
	f.mu.Unlock()

	return len(hits) > 0
}

// FilterArticles returns the articles whose title and description are both clean,
// in their original order, plus the number removed.
func (f *Filter) FilterArticles(articles []domain.Article) ([]domain.Article, int) {
	kept := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if f.Blocked(a.Title) || f.Blocked(a.Description) {
			continue
		}
		kept = append(kept, a)
	}
	return kept, len(articles) - len(kept)
}

// FilterVideos is FilterArticles for videos.
func (f *Filter) FilterVideos(videos []domain.Video) ([]domain.Video, int) {
	kept := make([]domain.Video, 0, len(videos))
	for _, v := range videos {
		if f.Blocked(v.Title) || f.Blocked(v.Description) {
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(videos) - len(kept)
}

// fold lower-cases s, maps compatibility forms (full-width letters, ligatures)
// to their plain equivalents and strips combining marks.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
