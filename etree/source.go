// Package etree implements a praxis.Source for RSS and Atom feeds.
// Feeds are a single page: everything the feed currently carries comes
// back in one fetch.
package etree

import (
	"context"
	"strconv"
	"strings"
	"time"

	"praxis"
	"praxis/htmltomarkdown"

	"github.com/beevik/etree"
)

// Ensure Source implements praxis.Source at compile time.
var _ praxis.Source = (*Source)(nil)

// Source parses RSS 2.0 and Atom feeds into raw units.
type Source struct {
	fetcher   praxis.Fetcher
	converter *htmltomarkdown.Converter
}

// NewSource creates a feed source over the shared fetcher.
func NewSource(fetcher praxis.Fetcher) *Source {
	return &Source{
		fetcher:   fetcher,
		converter: htmltomarkdown.NewConverter(),
	}
}

// FetchPage retrieves and parses the feed. Feeds have no paging; pages
// past the first are empty.
func (s *Source) FetchPage(ctx context.Context, src praxis.SourceDescriptor, page int) ([]praxis.RawUnit, bool, error) {
	if page > 0 {
		return nil, false, nil
	}

	body, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, false, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, false, praxis.Errorf(praxis.EMALFORMED, "parse feed %s: %v", src.URL, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, false, praxis.Errorf(praxis.EMALFORMED, "feed %s has no root element", src.URL)
	}

	switch root.Tag {
	case "rss":
		return s.parseRSS(src, root), false, nil
	case "feed":
		return s.parseAtom(src, root), false, nil
	default:
		return nil, false, praxis.Errorf(praxis.EMALFORMED, "feed %s: unknown root element %q", src.URL, root.Tag)
	}
}

// parseRSS walks channel/item elements of an RSS 2.0 feed.
func (s *Source) parseRSS(src praxis.SourceDescriptor, root *etree.Element) []praxis.RawUnit {
	var units []praxis.RawUnit
	for _, item := range root.FindElements("./channel/item") {
		unit := praxis.RawUnit{
			Source: src.Name,
			Title:  childText(item, "title"),
		}

		if guid := childText(item, "guid"); guid != "" {
			unit.ID = src.Name + ":" + guid
		} else if link := childText(item, "link"); link != "" {
			unit.ID = src.Name + ":" + link
		}

		unit.Text = s.markdown(childText(item, "description"))

		if pub := childText(item, "pubDate"); pub != "" {
			if t, err := time.Parse(time.RFC1123Z, pub); err == nil {
				unit.CapturedAt = t.UTC()
			} else if t, err := time.Parse(time.RFC1123, pub); err == nil {
				unit.CapturedAt = t.UTC()
			}
		}

		if c := childText(item, "comments_count"); c != "" {
			if n, err := strconv.ParseFloat(c, 64); err == nil {
				unit.Engagement = praxis.EngagementFromCount(n)
			}
		}

		units = append(units, unit)
	}
	return units
}

// parseAtom walks entry elements of an Atom feed.
func (s *Source) parseAtom(src praxis.SourceDescriptor, root *etree.Element) []praxis.RawUnit {
	var units []praxis.RawUnit
	for _, entry := range root.FindElements("./entry") {
		unit := praxis.RawUnit{
			Source: src.Name,
			Title:  childText(entry, "title"),
		}

		if id := childText(entry, "id"); id != "" {
			unit.ID = src.Name + ":" + id
		}

		text := childText(entry, "content")
		if text == "" {
			text = childText(entry, "summary")
		}
		unit.Text = s.markdown(text)

		ts := childText(entry, "published")
		if ts == "" {
			ts = childText(entry, "updated")
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			unit.CapturedAt = t.UTC()
		}

		units = append(units, unit)
	}
	return units
}

// markdown converts feed body HTML to markdown, falling back to the
// raw text for plain-text feeds.
func (s *Source) markdown(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if md, err := s.converter.Convert(text); err == nil && md != "" {
		return md
	}
	return text
}

// childText returns the trimmed text of a named child element.
func childText(parent *etree.Element, tag string) string {
	if el := parent.SelectElement(tag); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}
