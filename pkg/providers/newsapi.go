package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
)

const defaultNewsAPIBaseURL = "https://newsapi.org"

// NewsAPIConfig configures the NewsAPI fetcher.
type NewsAPIConfig struct {
	BaseURL string
	APIKey  string
}

// newsAPIFetcher implements Fetcher against the NewsAPI /v2/everything endpoint.
type newsAPIFetcher struct {
	client  HTTPClient
	baseURL string
	apiKey  string
}

// NewNewsAPIFetcher builds a Fetcher for NewsAPI.
func NewNewsAPIFetcher(client HTTPClient, cfg NewsAPIConfig) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultNewsAPIBaseURL
	}
	return &newsAPIFetcher{
		client:  client,
		baseURL: base,
		apiKey:  strings.TrimSpace(cfg.APIKey),
	}
}

// ID returns the provider id for NewsAPI.
func (f *newsAPIFetcher) ID() string {
	return ProviderNewsAPI
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"publishedAt"`
}

// Fetch performs one search request. A response without an articles field
// yields an empty slice.
func (f *newsAPIFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	q = q.WithDefaults()

	body, err := fetchBody(ctx, f.client, f.searchURL(q), ProviderNewsAPI, nil)
	if err != nil {
		return nil, err
	}

	var decoded newsAPIResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}

	return buildArticlesFromNewsAPI(decoded.Articles), nil
}

// searchURL builds the request URL for the query.
func (f *newsAPIFetcher) searchURL(q Query) string {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("language", q.Language)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	params.Set("apiKey", f.apiKey)

	return f.baseURL + "/v2/everything?" + params.Encode()
}

// buildArticlesFromNewsAPI maps wire records to domain articles, keeping API order.
func buildArticlesFromNewsAPI(items []newsAPIArticle) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, it := range items {
		desc := ""
		if it.Description != nil {
			desc = strings.TrimSpace(*it.Description)
		}
		link := strings.TrimSpace(it.URL)

		articles = append(articles, domain.Article{
			ID:          hashURL(link),
			Title:       it.Title,
			URL:         link,
			Description: desc,
			Source:      strings.TrimSpace(it.Source.Name),
			PublishedAt: parsePublishedAt(it.PublishedAt),
		})
	}
	return articles
}
