// Package taxonomy loads the economic-activity categories and their
// keyword sets from CSV or XLSX tables.
package taxonomy

import (
	"regexp"
	"strings"
	"unicode"
)

// Category is one named keyword set.
type Category struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Taxonomy is an ordered list of categories. Order is the order of first
// appearance across sources and rows, and classifiers use it to break
// score ties.
type Taxonomy struct {
	categories []Category
	index      map[string]int
	seen       []map[string]bool
}

// New creates an empty Taxonomy.
func New() *Taxonomy {
	return &Taxonomy{index: make(map[string]int)}
}

// Add appends keywords to the named category, creating it if needed.
// Keywords already present in the category are ignored.
func (t *Taxonomy) Add(name string, keywords []string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	i, ok := t.index[name]
	if !ok {
		i = len(t.categories)
		t.index[name] = i
		t.categories = append(t.categories, Category{Name: name})
		t.seen = append(t.seen, make(map[string]bool))
	}
	for _, kw := range keywords {
		if kw == "" || t.seen[i][kw] {
			continue
		}
		t.seen[i][kw] = true
		t.categories[i].Keywords = append(t.categories[i].Keywords, kw)
	}
}

// Merge adds every category of other, in other's order.
func (t *Taxonomy) Merge(other *Taxonomy) {
	if other == nil {
		return
	}
	for _, c := range other.categories {
		t.Add(c.Name, c.Keywords)
	}
}

// Categories returns the categories in taxonomy order.
func (t *Taxonomy) Categories() []Category {
	if t == nil {
		return nil
	}
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Names returns the category names in taxonomy order.
func (t *Taxonomy) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Keywords returns the keywords of a category.
func (t *Taxonomy) Keywords(name string) []string {
	if t == nil {
		return nil
	}
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return append([]string(nil), t.categories[i].Keywords...)
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.categories)
}

// Empty reports whether the taxonomy has no keyword at all.
func (t *Taxonomy) Empty() bool {
	if t == nil {
		return true
	}
	for _, c := range t.categories {
		if len(c.Keywords) > 0 {
			return false
		}
	}
	return true
}

// Tokenize splits text on whitespace and commas, lowercases each token,
// strips everything but letters and digits, and keeps the tokens longer
// than minLen runes, without duplicates.
func Tokenize(text string, minLen int) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})

	seen := make(map[string]bool, len(fields))
	var tokens []string
	for _, f := range fields {
		tok := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, f)
		if len([]rune(tok)) <= minLen || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}

var enumMarker = regexp.MustCompile(`(?i)^\s*(?:\(?[a-z]|\(?\d+|\(?[ivxlc]+)[.)]\s*`)

// StripMarker removes a leading enumeration marker such as "a.", "1.",
// "b)" or "iv." from a sub-category description.
func StripMarker(s string) string {
	return strings.TrimSpace(enumMarker.ReplaceAllString(s, ""))
}
