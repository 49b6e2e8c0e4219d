// Package digest assembles the daily digest: it fetches each section,
// summarizes every article and renders the result as HTML.
package digest

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
	"github.com/Adda-Baaj/khobor-mailer/internal/logger"
	"github.com/Adda-Baaj/khobor-mailer/pkg/providers"
)

// Aggregator runs one search per keyword and merges the results.
type Aggregator struct {
	fetcher  providers.Fetcher
	language string
	pageSize int
	log      logger.Logger
}

// NewAggregator builds an Aggregator. Empty language and non-positive page
// size fall back to the provider defaults.
func NewAggregator(fetcher providers.Fetcher, language string, pageSize int, log logger.Logger) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		language: language,
		pageSize: pageSize,
		log:      logger.Ensure(log),
	}
}

// Aggregate fetches every keyword in order, drops articles whose title was
// already seen and returns at most limit survivors (no cap when limit is not
// positive). The first fetch error aborts the whole aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, keywords []string, limit int) ([]domain.Article, error) {
	var all []domain.Article
	for _, kw := range keywords {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		arts, err := a.fetcher.Fetch(ctx, providers.Query{Text: kw, Language: a.language, PageSize: a.pageSize})
		if err != nil {
			return nil, fmt.Errorf("aggregate keyword %q: %w", kw, err)
		}
		a.log.DebugObj("keyword fetched", "keyword_fetched", map[string]any{
			"keyword":  kw,
			"articles": len(arts),
		})
		all = append(all, arts...)
	}

	unique := dedupeByTitle(all)
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique, nil
}

// dedupeByTitle keeps the first article for every exact title.
func dedupeByTitle(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, art := range articles {
		if _, dup := seen[art.Title]; dup {
			continue
		}
		seen[art.Title] = struct{}{}
		out = append(out, art)
	}
	return out
}
