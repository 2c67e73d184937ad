// Package trafilatura implements a praxis.Source for standalone
// articles and blog posts. The page's main content is isolated with
// go-trafilatura; boilerplate, navigation, and comments are discarded.
package trafilatura

import (
	"context"
	"strings"
	"time"

	"praxis"

	"github.com/markusmobius/go-trafilatura"
)

// Ensure Source implements praxis.Source at compile time.
var _ praxis.Source = (*Source)(nil)

// Source turns one article URL into a single raw unit.
type Source struct {
	fetcher praxis.Fetcher
}

// NewSource creates an article source over the shared fetcher.
func NewSource(fetcher praxis.Fetcher) *Source {
	return &Source{fetcher: fetcher}
}

// FetchPage retrieves the article. Articles have exactly one page with
// exactly one unit.
func (s *Source) FetchPage(ctx context.Context, src praxis.SourceDescriptor, page int) ([]praxis.RawUnit, bool, error) {
	if page > 0 {
		return nil, false, nil
	}

	body, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, false, err
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(body), opts)
	if err != nil {
		return nil, false, praxis.Errorf(praxis.EMALFORMED, "extract %s: %v", src.URL, err)
	}

	unit := praxis.RawUnit{
		ID:         src.Name + ":" + src.URL,
		Source:     src.Name,
		Title:      result.Metadata.Title,
		Text:       strings.TrimSpace(result.ContentText),
		CapturedAt: time.Now().UTC(),
	}
	if !result.Metadata.Date.IsZero() {
		unit.CapturedAt = result.Metadata.Date.UTC()
	}

	return []praxis.RawUnit{unit}, false, nil
}
