package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
)

const defaultGoogleNewsBaseURL = "https://news.google.com"

// GoogleNewsConfig configures the Google News RSS search fetcher. The locale
// fields map to the hl, gl and ceid query parameters.
type GoogleNewsConfig struct {
	BaseURL string
	HL      string
	GL      string
	CEID    string
}

// googleNewsFetcher implements Fetcher for the Google News RSS search feed.
type googleNewsFetcher struct {
	client  HTTPClient
	baseURL string
	hl      string
	gl      string
	ceid    string
}

// NewGoogleNewsFetcher builds a Fetcher for Google News RSS search results.
func NewGoogleNewsFetcher(client HTTPClient, cfg GoogleNewsConfig) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultGoogleNewsBaseURL
	}
	return &googleNewsFetcher{
		client:  client,
		baseURL: base,
		hl:      firstNonEmpty(cfg.HL, "zh-TW"),
		gl:      firstNonEmpty(cfg.GL, "TW"),
		ceid:    firstNonEmpty(cfg.CEID, "TW:zh-Hant"),
	}
}

// ID returns the provider id for the Google News fetcher.
func (f *googleNewsFetcher) ID() string {
	return ProviderGoogleNews
}

// Fetch retrieves the RSS search feed for the query and truncates it to the
// page size. The feed locale comes from the fetcher config, not q.Language.
func (f *googleNewsFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	q = q.WithDefaults()

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("hl", f.hl)
	params.Set("gl", f.gl)
	params.Set("ceid", f.ceid)

	raw, err := fetchBody(ctx, f.client, f.baseURL+"/rss/search?"+params.Encode(), ProviderGoogleNews, nil)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decode google news feed: %w", err)
	}

	articles := buildArticlesFromFeed(feed.Items)
	if len(articles) > q.PageSize {
		articles = articles[:q.PageSize]
	}
	return articles, nil
}

// buildArticlesFromFeed maps feed items to domain articles in feed order.
func buildArticlesFromFeed(items []*gofeed.Item) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		link := strings.TrimSpace(it.Link)

		published := parsePublishedAt(it.Published)
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		}

		source := ""
		if it.Author != nil {
			source = strings.TrimSpace(it.Author.Name)
		}

		articles = append(articles, domain.Article{
			ID:          hashURL(link),
			Title:       strings.TrimSpace(it.Title),
			URL:         link,
			Description: htmlToText(it.Description),
			Source:      source,
			PublishedAt: published,
		})
	}
	return articles
}

// htmlToText flattens an HTML fragment into whitespace-normalised text.
func htmlToText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
