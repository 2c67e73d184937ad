// Package goquery implements a praxis.Source for forum-style HTML
// listings. Post markup is parsed with goquery selectors and bodies are
// converted to markdown before they enter the pipeline.
package goquery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"praxis"
	"praxis/htmltomarkdown"

	gq "github.com/PuerkitoBio/goquery"
)

// Ensure Source implements praxis.Source at compile time.
var _ praxis.Source = (*Source)(nil)

// Source scrapes paged forum listings. Each post becomes one raw unit;
// posts that fail to parse yield zero-value fields and are filtered out
// by unit validation downstream.
type Source struct {
	fetcher   praxis.Fetcher
	converter *htmltomarkdown.Converter
}

// NewSource creates a forum source over the shared fetcher.
func NewSource(fetcher praxis.Fetcher) *Source {
	return &Source{
		fetcher:   fetcher,
		converter: htmltomarkdown.NewConverter(),
	}
}

// FetchPage retrieves one listing page and parses its posts. more is
// true while the page advertises a rel="next" link.
func (s *Source) FetchPage(ctx context.Context, src praxis.SourceDescriptor, page int) ([]praxis.RawUnit, bool, error) {
	pageURL, err := buildPageURL(src.URL, page)
	if err != nil {
		return nil, false, praxis.Errorf(praxis.EINVALID, "source URL %q: %v", src.URL, err)
	}

	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, false, err
	}

	doc, err := gq.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, false, praxis.Errorf(praxis.EMALFORMED, "parse %s: %v", pageURL, err)
	}

	var units []praxis.RawUnit
	doc.Find("article.post, div.post").Each(func(_ int, sel *gq.Selection) {
		units = append(units, s.parsePost(src, sel))
	})

	more := doc.Find(`a[rel="next"]`).Length() > 0
	return units, more, nil
}

// parsePost extracts one unit from a post element. Missing fields are
// left zero; validation decides the unit's fate.
func (s *Source) parsePost(src praxis.SourceDescriptor, sel *gq.Selection) praxis.RawUnit {
	unit := praxis.RawUnit{
		Source: src.Name,
		Title:  strings.TrimSpace(sel.Find(".title").First().Text()),
	}

	if id, ok := sel.Attr("data-id"); ok {
		unit.ID = src.Name + ":" + id
	}

	if html, err := sel.Find(".content").First().Html(); err == nil {
		if md, err := s.converter.Convert(html); err == nil {
			unit.Text = md
		}
	}

	if ts, ok := sel.Find("time").First().Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			unit.CapturedAt = t.UTC()
		}
	}

	likes := strings.TrimSpace(sel.Find(".likes").First().Text())
	if n, err := strconv.ParseFloat(likes, 64); err == nil {
		unit.Engagement = praxis.EngagementFromCount(n)
	}

	return unit
}

// buildPageURL appends the page query parameter for pages past the
// first, preserving any query the descriptor already carries. Forum
// pages are 1-based.
func buildPageURL(raw string, page int) (string, error) {
	if page == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", fmt.Sprint(page+1))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
