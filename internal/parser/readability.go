package parser

import (
	"bytes"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// ReadableText runs the readability algorithm over a raw HTML page and
// returns its text content, whitespace-collapsed. Used when a portal's
// content selector no longer matches.
func ReadableText(body []byte, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return "", err
	}
	return CollapseSpace(article.TextContent), nil
}
