package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-mailer/internal/config"
	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
	"github.com/Adda-Baaj/khobor-mailer/internal/logger"
	"github.com/Adda-Baaj/khobor-mailer/pkg/providers"
)

// Summarizer turns article text into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Options tune a Builder. Zero values select sequential summaries with no
// per-item timeout, the provider defaults and the local clock.
type Options struct {
	Language       string
	PageSize       int
	SummaryWorkers int
	SummaryTimeout time.Duration
	Location       *time.Location
	Now            func() time.Time
}

// Builder fetches and summarizes the configured sections.
type Builder struct {
	fetcher    providers.Fetcher
	aggregator *Aggregator
	summarizer Summarizer
	sections   []config.Section
	opts       Options
	log        logger.Logger
}

// NewBuilder wires a Builder for the given sections.
func NewBuilder(fetcher providers.Fetcher, summarizer Summarizer, sections []config.Section, opts Options, log logger.Logger) (*Builder, error) {
	if fetcher == nil {
		return nil, errors.New("digest builder requires a fetcher")
	}
	if summarizer == nil {
		return nil, errors.New("digest builder requires a summarizer")
	}
	if len(sections) == 0 {
		return nil, errors.New("digest builder requires at least one section")
	}

	if opts.SummaryWorkers <= 0 {
		opts.SummaryWorkers = 1
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log = logger.Ensure(log)

	return &Builder{
		fetcher:    fetcher,
		aggregator: NewAggregator(fetcher, opts.Language, opts.PageSize, log),
		summarizer: summarizer,
		sections:   sections,
		opts:       opts,
		log:        log,
	}, nil
}

// Build runs every section in order and returns the assembled digest. Any
// fetch or summary error aborts the build.
func (b *Builder) Build(ctx context.Context) (domain.Digest, error) {
	d := domain.Digest{
		Date:     b.opts.Now().In(b.opts.Location),
		Sections: make([]domain.Section, 0, len(b.sections)),
	}

	for _, sec := range b.sections {
		articles, err := b.articlesFor(ctx, sec)
		if err != nil {
			return domain.Digest{}, fmt.Errorf("section %s: %w", sec.ID, err)
		}
		b.log.InfoObj("section fetched", "section_fetched", map[string]any{
			"section":  sec.ID,
			"provider": b.fetcher.ID(),
			"articles": len(articles),
		})

		cards, err := b.summarizeAll(ctx, sec.ID, articles)
		if err != nil {
			return domain.Digest{}, fmt.Errorf("section %s: %w", sec.ID, err)
		}

		d.Sections = append(d.Sections, domain.Section{
			ID:      sec.ID,
			Heading: sec.Title,
			Cards:   cards,
		})
	}

	return d, nil
}

// articlesFor returns the section's articles in provider order, capped at
// the section limit.
func (b *Builder) articlesFor(ctx context.Context, sec config.Section) ([]domain.Article, error) {
	if sec.Aggregated() {
		return b.aggregator.Aggregate(ctx, sec.Keywords, sec.Limit)
	}

	arts, err := b.fetcher.Fetch(ctx, providers.Query{
		Text:     sec.Query,
		Language: b.opts.Language,
		PageSize: b.opts.PageSize,
	})
	if err != nil {
		return nil, err
	}
	if sec.Limit > 0 && len(arts) > sec.Limit {
		arts = arts[:sec.Limit]
	}
	return arts, nil
}
