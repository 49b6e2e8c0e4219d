package digest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
)

// summarizeAll summarizes articles with a bounded pool of workers. Cards keep
// the input order whatever the completion order. The first failure cancels
// the remaining work and is returned.
func (b *Builder) summarizeAll(ctx context.Context, sectionID string, articles []domain.Article) ([]domain.Card, error) {
	out := make([]domain.Card, len(articles))
	if len(articles) == 0 {
		return out, nil
	}

	workerCount := min(len(articles), b.opts.SummaryWorkers)
	g, gctx := errgroup.WithContext(ctx)
	jobCh := make(chan int)

	for workerID := range workerCount {
		g.Go(func() error {
			return b.summaryWorker(gctx, sectionID, articles, jobCh, out, workerID)
		})
	}

	g.Go(func() error {
		defer close(jobCh)
		for idx := range articles {
			select {
			case <-gctx.Done():
				return nil
			case jobCh <- idx:
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// summaryWorker drains jobCh until it is closed or the context is done.
func (b *Builder) summaryWorker(
	ctx context.Context,
	sectionID string,
	articles []domain.Article,
	jobCh <-chan int,
	out []domain.Card,
	workerID int,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case idx, ok := <-jobCh:
			if !ok {
				return nil
			}

			art := articles[idx]
			summary, err := b.summarizeOne(ctx, art)
			if err != nil {
				b.log.ErrorObj("article summary failed", "summary_error", map[string]any{
					"worker_id": workerID,
					"section":   sectionID,
					"url":       art.URL,
					"error":     err.Error(),
				})
				return err
			}

			b.log.DebugObj("article summarized", "article_summarized", map[string]any{
				"worker_id": workerID,
				"section":   sectionID,
				"url":       art.URL,
			})
			out[idx] = domain.Card{Article: art, Summary: summary}
		}
	}
}

// summarizeOne applies the optional per-item timeout around one summary call.
func (b *Builder) summarizeOne(ctx context.Context, art domain.Article) (string, error) {
	if b.opts.SummaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.SummaryTimeout)
		defer cancel()
	}

	summary, err := b.summarizer.Summarize(ctx, art.SummaryInput())
	if err != nil {
		return "", fmt.Errorf("summarize %q: %w", art.Title, err)
	}
	return summary, nil
}
