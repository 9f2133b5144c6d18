// Package parser reads fields off portal HTML: the first match of a
// selector, cleaned article bodies, and listing-region exclusions.
package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstText returns the trimmed text of the first match of selector
// under sel, or "" when nothing matches.
func FirstText(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return CollapseSpace(sel.Find(selector).First().Text())
}

// FirstValue returns the attr value of the first match of selector, or its
// text when attr is empty. ok is false when the selector matched nothing
// or the attribute is absent.
func FirstValue(sel *goquery.Selection, selector, attr string) (string, bool) {
	if selector == "" {
		return "", false
	}
	match := sel.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	if attr == "" || attr == "text" {
		return CollapseSpace(match.Text()), true
	}
	val, ok := match.Attr(attr)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(val), true
}

// TrimPrefixes removes the first matching prefix from s.
func TrimPrefixes(s string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimSpace(strings.TrimPrefix(s, p))
		}
	}
	return s
}

// ResolveURL resolves href against base. Absolute hrefs are returned as is.
func ResolveURL(base, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(ref).String(), nil
}

// CollapseSpace trims s and folds every whitespace run into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
