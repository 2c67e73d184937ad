package praxis

import (
	"context"
	"iter"
	"time"
)

// RawUnit is one piece of collected community content: a forum post, a
// thread comment, a feed entry, or a repository file. Units are immutable
// once collected and are consumed exactly once by the batcher.
type RawUnit struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Title      string    `json:"title,omitempty"`
	Text       string    `json:"text"`
	CapturedAt time.Time `json:"capturedAt"`

	// Engagement is a community signal in [0,1], e.g. an upvote ratio.
	// Zero means no signal was available.
	Engagement float64 `json:"engagement,omitempty"`
}

// Validate returns an error if the unit cannot enter the pipeline.
func (u *RawUnit) Validate() error {
	if u.ID == "" {
		return Errorf(EINVALID, "unit ID required")
	}
	if u.Source == "" {
		return Errorf(EINVALID, "unit source required")
	}
	if u.Text == "" {
		return Errorf(EINVALID, "unit text required")
	}
	if u.Engagement < 0 || u.Engagement > 1 {
		return Errorf(EINVALID, "unit engagement must be in [0,1]")
	}
	return nil
}

// engagementHalfCount is the raw reaction count that reads as a 0.5
// engagement signal.
const engagementHalfCount = 10

// EngagementFromCount converts a raw reaction count (likes, upvotes,
// comment tallies) into the [0,1] engagement signal. Counts saturate:
// ten reactions read as 0.5 and the signal approaches 1 asymptotically,
// so a viral thread never dominates a ratio-based signal outright.
func EngagementFromCount(n float64) float64 {
	if n <= 0 {
		return 0
	}
	return n / (n + engagementHalfCount)
}

// SourceDescriptor identifies one upstream community source.
type SourceDescriptor struct {
	// Platform tags the source shape, e.g. "forum", "feed", "article".
	Platform string `json:"platform" yaml:"platform"`

	// Name is the community or repository identifier, used in logs and
	// as the RawUnit source reference.
	Name string `json:"name" yaml:"name"`

	// URL is where the source lives.
	URL string `json:"url" yaml:"url"`

	// Limit caps the number of units fetched from this source per run.
	// Zero means the collector default applies.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Validate returns an error if the descriptor is unusable.
func (s *SourceDescriptor) Validate() error {
	if s.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	if s.URL == "" {
		return Errorf(EINVALID, "source URL required")
	}
	return nil
}

// Source fetches pages of raw units from one kind of upstream site.
// Implementations hide the site-specific parsing; they live in packages
// named after their parsing dependency (goquery/, etree/, trafilatura/).
type Source interface {
	// FetchPage retrieves one page of units. more reports whether another
	// page is available. Page numbering starts at zero.
	FetchPage(ctx context.Context, src SourceDescriptor, page int) (units []RawUnit, more bool, err error)
}

// Limiter gates outbound requests. The pipeline shares a single limiter
// across all sources so the inter-request floor is enforced globally,
// never per caller.
type Limiter interface {
	// Wait blocks until the next request is allowed, or the context ends.
	Wait(ctx context.Context) error
}

// Collector streams raw units from a single source, respecting the shared
// rate limiter and the per-source unit limit. The sequence is finite and
// not restartable: iterating again re-fetches from scratch.
//
// Per-unit parse failures are skipped and logged inside the collector.
// A total source failure terminates the sequence with a non-nil error;
// sibling sources are unaffected.
type Collector interface {
	Collect(ctx context.Context, src SourceDescriptor) iter.Seq2[RawUnit, error]
}

// Fetcher retrieves a raw page body over the network. Site source
// implementations share one fetcher so politeness headers and timeouts
// are applied uniformly.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (body string, err error)
}
