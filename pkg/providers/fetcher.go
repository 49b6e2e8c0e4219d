package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
	"github.com/Adda-Baaj/khobor-mailer/pkg/httpclient"
)

const (
	// Supported provider ids.
	ProviderNewsAPI    = "newsapi"
	ProviderGoogleNews = "googlenews"

	DefaultLanguage = "zh"
	DefaultPageSize = 10
)

// HTTPClient is the HTTP surface fetchers depend on.
type HTTPClient = httpclient.Client

// Query describes one search request against a provider.
type Query struct {
	Text     string
	Language string
	PageSize int
}

// WithDefaults fills unset language and page size.
func (q Query) WithDefaults() Query {
	if strings.TrimSpace(q.Language) == "" {
		q.Language = DefaultLanguage
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	return q
}

// Fetcher runs a search query and returns the matching articles in provider order.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, q Query) ([]domain.Article, error)
}

// FetcherRegistry resolves fetchers by provider id.
type FetcherRegistry interface {
	FetcherFor(id string) (Fetcher, error)
}

type fetcherRegistry struct {
	fetchers map[string]Fetcher
	mu       sync.RWMutex
}

// NewFetcherRegistry builds a registry for the provided fetcher implementations.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{
		fetchers: make(map[string]Fetcher, len(fetchers)),
	}

	for _, f := range fetchers {
		if f == nil {
			continue
		}
		reg.fetchers[strings.ToLower(strings.TrimSpace(f.ID()))] = f
	}

	return reg
}

// FetcherFor selects the fetcher registered under the given provider id.
func (r *fetcherRegistry) FetcherFor(id string) (Fetcher, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" {
		return nil, fmt.Errorf("provider id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.fetchers[key]; ok {
		return f, nil
	}

	return nil, fmt.Errorf("no fetcher registered for provider %q", id)
}

// DefaultHTTPClient returns the resty-backed client used by fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(30 * time.Second) }

// DefaultFetcherRegistry wires up the known provider fetchers.
func DefaultFetcherRegistry(client HTTPClient, newsAPI NewsAPIConfig, googleNews GoogleNewsConfig) FetcherRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}

	return NewFetcherRegistry(
		NewNewsAPIFetcher(client, newsAPI),
		NewGoogleNewsFetcher(client, googleNews),
	)
}
