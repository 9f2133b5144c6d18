package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// NonContent is always stripped from article bodies.
const NonContent = "script, style, noscript"

// BodyOptions controls how an article body is pulled from a detail page.
type BodyOptions struct {
	// Container is the CSS selector of the element holding the article.
	Container string
	// Remove lists selectors of blocks to drop inside the container.
	Remove []string
	// Paragraph selects the text blocks to join. Defaults to "p".
	Paragraph string
}

// CompileSelectors checks that every non-empty CSS selector parses the way
// goquery will parse it at Find time.
func CompileSelectors(selectors ...string) error {
	for _, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			continue
		}
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("selector %q: %w", sel, err)
		}
	}
	return nil
}

// ExtractBody returns the cleaned body text and whether the container was
// found. Paragraph texts are trimmed, empty ones dropped, and the rest
// joined by single spaces. A container without paragraph elements
// contributes its whole text.
func ExtractBody(doc *goquery.Selection, opts BodyOptions) (string, bool) {
	container := doc.Find(opts.Container).First()
	if container.Length() == 0 {
		return "", false
	}
	// Work on a copy so the cached document stays intact.
	container = container.Clone()

	container.Find(NonContent).Remove()
	for _, sel := range opts.Remove {
		if strings.TrimSpace(sel) != "" {
			container.Find(sel).Remove()
		}
	}

	paragraph := opts.Paragraph
	if paragraph == "" {
		paragraph = "p"
	}

	paragraphs := container.Find(paragraph)
	if paragraphs.Length() == 0 {
		return CollapseSpace(container.Text()), true
	}

	parts := make([]string, 0, paragraphs.Length())
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		if text := CollapseSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " "), true
}
