package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/IshaanNene/BeritaKepri/internal/config"
)

// Excluder decides whether a listing container sits in a region the portal
// does not want scraped (sidebars, "popular" widgets, sliders).
type Excluder struct {
	ancestors []string
	xpaths    []*xpath.Expr
	sources   []string
}

// NewExcluder compiles the exclusion rules. XPath expressions are evaluated
// relative to the container node, so "ancestor::aside" is the usual form.
func NewExcluder(rules []config.ExclusionRule) (*Excluder, error) {
	e := &Excluder{}
	for _, r := range rules {
		if css := strings.TrimSpace(r.Ancestor); css != "" {
			e.ancestors = append(e.ancestors, css)
		}
		if expr := strings.TrimSpace(r.XPath); expr != "" {
			compiled, err := xpath.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile xpath %q: %w", expr, err)
			}
			e.xpaths = append(e.xpaths, compiled)
			e.sources = append(e.sources, expr)
		}
	}
	return e, nil
}

// Excluded returns the rule that matched, or "" when the container is kept.
func (e *Excluder) Excluded(container *goquery.Selection) string {
	if e == nil || container.Length() == 0 {
		return ""
	}
	for _, css := range e.ancestors {
		if container.ParentsFiltered(css).Length() > 0 {
			return css
		}
	}
	node := container.Get(0)
	for i, expr := range e.xpaths {
		if htmlquery.QuerySelector(node, expr) != nil {
			return e.sources[i]
		}
	}
	return ""
}

