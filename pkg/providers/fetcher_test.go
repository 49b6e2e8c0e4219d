package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
)

type namedFetcher string

func (n namedFetcher) ID() string { return string(n) }

func (n namedFetcher) Fetch(context.Context, Query) ([]domain.Article, error) { return nil, nil }

func TestFetcherRegistryLookup(t *testing.T) {
	reg := NewFetcherRegistry(namedFetcher("NewsAPI"), nil, namedFetcher("googlenews"))

	f, err := reg.FetcherFor(" newsapi ")
	require.NoError(t, err)
	assert.Equal(t, "NewsAPI", f.ID())

	_, err = reg.FetcherFor("bing")
	assert.ErrorContains(t, err, `no fetcher registered for provider "bing"`)

	_, err = reg.FetcherFor("")
	assert.Error(t, err)
}

func TestDefaultFetcherRegistryKnowsBothProviders(t *testing.T) {
	reg := DefaultFetcherRegistry(nil, NewsAPIConfig{}, GoogleNewsConfig{})
	for _, id := range []string{ProviderNewsAPI, ProviderGoogleNews} {
		f, err := reg.FetcherFor(id)
		require.NoError(t, err)
		assert.Equal(t, id, f.ID())
	}
}

func TestQueryWithDefaults(t *testing.T) {
	q := Query{Text: "x"}.WithDefaults()
	assert.Equal(t, DefaultLanguage, q.Language)
	assert.Equal(t, DefaultPageSize, q.PageSize)

	q = Query{Text: "x", Language: "en", PageSize: 3}.WithDefaults()
	assert.Equal(t, "en", q.Language)
	assert.Equal(t, 3, q.PageSize)
}

func TestResponseSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", responseSnippet([]byte("  ")))
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, responseSnippet(long), 515)
}

func TestParsePublishedAt(t *testing.T) {
	want := time.Date(2026, 10, 18, 22, 5, 0, 0, time.UTC)

	assert.True(t, want.Equal(parsePublishedAt("2026-10-18T22:05:00Z")))
	assert.True(t, want.Equal(parsePublishedAt("Sun, 18 Oct 2026 22:05:00 +0000")))
	assert.True(t, parsePublishedAt("yesterday").IsZero())
	assert.True(t, parsePublishedAt("  ").IsZero())
}
