// Package trafilatura provides plain-text extraction from post content HTML.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/boardarch"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Extractor implements boardarch.TextExtractor at compile time.
var _ boardarch.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to reduce a post's content HTML to clean
// plain text. Quoted-reply markup and tables are excluded; precision is
// favored over recall since callers fall back to raw block text anyway.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText processes a fragment of post content HTML and returns plain
// text. The fragment is wrapped in a document shell because trafilatura
// expects a full page.
func (e *Extractor) ExtractText(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", boardarch.Errorf(boardarch.EINVALID, "empty HTML input")
	}

	page := "<html><body>" + fragment + "</body></html>"
	opts := trafilatura.Options{
		ExcludeComments: true,
		ExcludeTables:   true,
		Focus:           trafilatura.FavorPrecision,
		EnableFallback:  true,
	}

	result, err := trafilatura.Extract(strings.NewReader(page), opts)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result.ContentText), nil
}
