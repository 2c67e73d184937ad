package goquery_test

import (
	"context"
	"testing"

	"praxis"
	"praxis/goquery"
	"praxis/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<!DOCTYPE html>
<html><body>
<article class="post" data-id="42">
  <a class="title" href="/t/42">Midjourney photorealism tips</a>
  <div class="content"><p>Use <code>--style raw</code> and keep prompts short.</p></div>
  <time datetime="2026-08-10T09:30:00Z">Aug 10</time>
  <span class="likes">17</span>
</article>
<article class="post" data-id="43">
  <a class="title" href="/t/43">Anyone else?</a>
  <div class="content"><p>Same here.</p></div>
  <time datetime="2026-08-11T10:00:00Z">Aug 11</time>
  <span class="likes">2</span>
</article>
<a rel="next" href="?page=2">Next</a>
</body></html>`

const lastPage = `<!DOCTYPE html>
<html><body>
<article class="post" data-id="44">
  <div class="content"><p>Final post.</p></div>
  <time datetime="2026-08-12T10:00:00Z">Aug 12</time>
</article>
</body></html>`

func descriptor() praxis.SourceDescriptor {
	return praxis.SourceDescriptor{
		Platform: "forum",
		Name:     "community",
		URL:      "https://example.com/c/ai",
	}
}

func TestSource_ParsesPosts(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			assert.Equal(t, "https://example.com/c/ai", url)
			return listingPage, nil
		},
	}

	src := goquery.NewSource(fetcher)
	units, more, err := src.FetchPage(context.Background(), descriptor(), 0)

	require.NoError(t, err)
	assert.True(t, more, "rel=next link means another page")
	require.Len(t, units, 2)

	assert.Equal(t, "community:42", units[0].ID)
	assert.Equal(t, "community", units[0].Source)
	assert.Equal(t, "Midjourney photorealism tips", units[0].Title)
	assert.Contains(t, units[0].Text, "`--style raw`", "content is converted to markdown")
	assert.Equal(t, "2026-08-10T09:30:00Z", units[0].CapturedAt.Format("2006-01-02T15:04:05Z"))
	assert.InDelta(t, praxis.EngagementFromCount(17), units[0].Engagement, 1e-9)
	assert.NoError(t, units[0].Validate(), "a liked post must be able to enter the pipeline")
}

func TestSource_PagingAddsQueryParameter(t *testing.T) {
	t.Parallel()

	var fetched []string
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			fetched = append(fetched, url)
			return lastPage, nil
		},
	}

	src := goquery.NewSource(fetcher)
	units, more, err := src.FetchPage(context.Background(), descriptor(), 1)

	require.NoError(t, err)
	assert.False(t, more, "no rel=next link on the last page")
	assert.Len(t, units, 1)
	assert.Equal(t, []string{"https://example.com/c/ai?page=2"}, fetched)
}

func TestSource_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return "", praxis.Errorf(praxis.EUNAVAILABLE, "down")
		},
	}

	src := goquery.NewSource(fetcher)
	_, _, err := src.FetchPage(context.Background(), descriptor(), 0)

	require.Error(t, err)
	assert.Equal(t, praxis.EUNAVAILABLE, praxis.ErrorCode(err))
}

func TestSource_MalformedPostsYieldInvalidUnits(t *testing.T) {
	t.Parallel()

	// A post without data-id or content parses to a unit that fails
	// validation downstream; the source itself does not error.
	page := `<html><body><article class="post"><p>stray</p></article></body></html>`
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return page, nil
		},
	}

	src := goquery.NewSource(fetcher)
	units, more, err := src.FetchPage(context.Background(), descriptor(), 0)

	require.NoError(t, err)
	assert.False(t, more)
	require.Len(t, units, 1)
	assert.Error(t, units[0].Validate())
}
