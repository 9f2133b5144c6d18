// Package classifier tags article bodies with economic-activity categories
// by counting keyword hits.
package classifier

import (
	"sort"
	"strings"
	"unicode"

	"github.com/IshaanNene/BeritaKepri/internal/taxonomy"
)

// DefaultSentinel labels an article no category matched.
const DefaultSentinel = "Tidak Terkategori"

// Matching disciplines.
const (
	MatchWord      = "word"
	MatchSubstring = "substring"
)

// Tie-break orders.
const (
	TieOrder = "order"
	TieAlpha = "alpha"
)

// Score is one category's keyword hit count.
type Score struct {
	Category string `json:"category"`
	Hits     int    `json:"hits"`
}

// Matcher reports whether a keyword occurs in a prepared body.
type Matcher interface {
	Prepare(body string) Body
}

// Body is a lowercased article body ready for keyword lookups.
type Body interface {
	Contains(keyword string) bool
}

// WordMatcher matches whole words only: "emas" does not hit "pengemasan".
type WordMatcher struct{}

// Prepare splits the body on every rune that is not a letter or digit.
func (WordMatcher) Prepare(body string) Body {
	words := strings.FieldsFunc(strings.ToLower(body), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(wordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

type wordSet map[string]struct{}

func (s wordSet) Contains(keyword string) bool {
	_, ok := s[keyword]
	return ok
}

// SubstringMatcher matches plain containment, so keywords also hit inside
// longer words.
type SubstringMatcher struct{}

// Prepare lowercases the body.
func (SubstringMatcher) Prepare(body string) Body {
	return substringBody(strings.ToLower(body))
}

type substringBody string

func (b substringBody) Contains(keyword string) bool {
	return keyword != "" && strings.Contains(string(b), keyword)
}

// NewMatcher returns the matcher for a discipline name, defaulting to
// whole-word matching.
func NewMatcher(discipline string) Matcher {
	if discipline == MatchSubstring {
		return SubstringMatcher{}
	}
	return WordMatcher{}
}

// ScoreAll counts, for every category in taxonomy order, how many of its
// keywords occur in body.
func ScoreAll(body string, tax *taxonomy.Taxonomy, m Matcher) []Score {
	prepared := m.Prepare(body)
	cats := tax.Categories()
	scores := make([]Score, len(cats))
	for i, c := range cats {
		scores[i].Category = c.Name
		for _, kw := range c.Keywords {
			if prepared.Contains(kw) {
				scores[i].Hits++
			}
		}
	}
	return scores
}

// MultiLabel returns up to TopN categories per article.
type MultiLabel struct {
	TopN     int
	Sentinel string
	TieBreak string
	Matcher  Matcher
}

// NewMultiLabel creates a whole-word multi-label classifier.
func NewMultiLabel(topN int, sentinel, tieBreak string) *MultiLabel {
	if topN < 1 {
		topN = 3
	}
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return &MultiLabel{TopN: topN, Sentinel: sentinel, TieBreak: tieBreak, Matcher: WordMatcher{}}
}

// Classify returns the matching categories by descending score, or the
// sentinel alone when the body or taxonomy is empty or nothing matched.
// Equal scores keep taxonomy order unless TieBreak is alpha.
func (c *MultiLabel) Classify(body string, tax *taxonomy.Taxonomy) []string {
	if strings.TrimSpace(body) == "" || tax.Empty() {
		return []string{c.Sentinel}
	}

	var hits []Score
	for _, s := range ScoreAll(body, tax, c.Matcher) {
		if s.Hits > 0 {
			hits = append(hits, s)
		}
	}
	if len(hits) == 0 {
		return []string{c.Sentinel}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Hits != hits[j].Hits {
			return hits[i].Hits > hits[j].Hits
		}
		if c.TieBreak == TieAlpha {
			return hits[i].Category < hits[j].Category
		}
		return false
	})

	if len(hits) > c.TopN {
		hits = hits[:c.TopN]
	}
	labels := make([]string, len(hits))
	for i, h := range hits {
		labels[i] = h.Category
	}
	return labels
}

// SingleLabel returns the one best category per article.
type SingleLabel struct {
	Sentinel string
	Matcher  Matcher
}

// NewSingleLabel creates a single-label classifier using the named
// matching discipline.
func NewSingleLabel(sentinel, discipline string) *SingleLabel {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return &SingleLabel{Sentinel: sentinel, Matcher: NewMatcher(discipline)}
}

// Classify returns the category with the strictly highest score; the
// first one seen wins ties. The sentinel is returned when nothing scores.
func (c *SingleLabel) Classify(body string, tax *taxonomy.Taxonomy) string {
	if strings.TrimSpace(body) == "" || tax.Empty() {
		return c.Sentinel
	}
	best, bestHits := c.Sentinel, 0
	for _, s := range ScoreAll(body, tax, c.Matcher) {
		if s.Hits > bestHits {
			best, bestHits = s.Category, s.Hits
		}
	}
	return best
}
