package trafilatura_test

import (
	"context"
	"testing"

	"praxis"
	"praxis/mock"
	"praxis/trafilatura"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Taming Whisper hallucinations</title></head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<main>
<article>
<h1>Taming Whisper hallucinations</h1>
<p>Whisper invents text during long silences. Preprocess audio with a
voice activity detector and feed it only speech segments; hallucinated
fragments drop to nearly zero.</p>
<p>For streaming use, keep chunks under thirty seconds.</p>
</article>
</main>
<footer>Copyright 2026</footer>
</body>
</html>`

func TestSource_ExtractsArticleBody(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			assert.Equal(t, "https://example.com/whisper", url)
			return articlePage, nil
		},
	}

	src := trafilatura.NewSource(fetcher)
	desc := praxis.SourceDescriptor{Platform: "article", Name: "blog", URL: "https://example.com/whisper"}

	units, more, err := src.FetchPage(context.Background(), desc, 0)

	require.NoError(t, err)
	assert.False(t, more)
	require.Len(t, units, 1)

	assert.Equal(t, "blog:https://example.com/whisper", units[0].ID)
	assert.Contains(t, units[0].Text, "voice activity detector")
	assert.NotContains(t, units[0].Text, "Copyright 2026", "boilerplate is stripped")
	assert.False(t, units[0].CapturedAt.IsZero())
}

func TestSource_SecondPageIsEmpty(t *testing.T) {
	t.Parallel()

	src := trafilatura.NewSource(&mock.Fetcher{})
	desc := praxis.SourceDescriptor{Platform: "article", Name: "blog", URL: "https://example.com/whisper"}

	units, more, err := src.FetchPage(context.Background(), desc, 1)

	require.NoError(t, err)
	assert.False(t, more)
	assert.Empty(t, units)
}

func TestSource_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return "", praxis.Errorf(praxis.ETIMEOUT, "slow host")
		},
	}

	src := trafilatura.NewSource(fetcher)
	desc := praxis.SourceDescriptor{Platform: "article", Name: "blog", URL: "https://example.com/whisper"}

	_, _, err := src.FetchPage(context.Background(), desc, 0)

	require.Error(t, err)
	assert.Equal(t, praxis.ETIMEOUT, praxis.ErrorCode(err))
}
