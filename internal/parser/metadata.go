package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// publishedMeta lists the meta tags news sites use for the publication
// timestamp, most specific first.
var publishedMeta = []string{
	`meta[property="article:published_time"]`,
	`meta[name="article:published_time"]`,
	`meta[itemprop="datePublished"]`,
	`meta[name="pubdate"]`,
	`meta[name="publishdate"]`,
	`meta[property="og:published_time"]`,
}

// PublishedTime returns the raw publication timestamp a page declares in
// its JSON-LD or meta tags, or "" when it declares none. The value is
// usually ISO-8601.
func PublishedTime(doc *goquery.Selection) string {
	if ts := jsonLDPublished(doc); ts != "" {
		return ts
	}
	for _, sel := range publishedMeta {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	if dt, ok := doc.Find(`time[itemprop="datePublished"]`).First().Attr("datetime"); ok {
		return strings.TrimSpace(dt)
	}
	return ""
}

// jsonLDPublished reads datePublished from <script type="application/ld+json">
// blocks, which hold a single object, an array or an @graph.
func jsonLDPublished(doc *goquery.Selection) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		var objects []map[string]any
		var single map[string]any
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			objects = append(objects, single)
			if graph, ok := single["@graph"].([]any); ok {
				for _, g := range graph {
					if m, ok := g.(map[string]any); ok {
						objects = append(objects, m)
					}
				}
			}
		} else if err := json.Unmarshal([]byte(raw), &objects); err != nil {
			return true
		}

		for _, obj := range objects {
			if ts, ok := obj["datePublished"].(string); ok && strings.TrimSpace(ts) != "" {
				found = strings.TrimSpace(ts)
				return false
			}
		}
		return true
	})
	return found
}
