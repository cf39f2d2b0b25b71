// Package readability provides plain-text extraction backed by go-readability.
// It is an alternative to the trafilatura extractor for posts whose markup
// trips trafilatura's precision heuristics.
package readability

import (
	"strings"

	"github.com/fwojciec/boardarch"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements boardarch.TextExtractor at compile time.
var _ boardarch.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to reduce post content HTML to plain text.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText processes a fragment of post content HTML and returns plain
// text. The fragment is wrapped in a document shell because readability
// expects a full page.
func (e *Extractor) ExtractText(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", boardarch.Errorf(boardarch.EINVALID, "empty HTML input")
	}

	page := "<html><body>" + fragment + "</body></html>"
	article, err := readability.FromReader(strings.NewReader(page), nil)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(article.TextContent), nil
}
