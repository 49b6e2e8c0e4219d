package digest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
	"github.com/Adda-Baaj/khobor-mailer/pkg/providers"
)

type stubFetcher struct {
	mu      sync.Mutex
	results map[string][]domain.Article
	errs    map[string]error
	queries []providers.Query
}

func (s *stubFetcher) ID() string { return "stub" }

func (s *stubFetcher) Fetch(_ context.Context, q providers.Query) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if err := s.errs[q.Text]; err != nil {
		return nil, err
	}
	return s.results[q.Text], nil
}

func (s *stubFetcher) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.queries))
	for _, q := range s.queries {
		out = append(out, q.Text)
	}
	return out
}

type stubSummarizer struct {
	mu     sync.Mutex
	inputs []string
	fn     func(ctx context.Context, text string) (string, error)
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, text)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(ctx, text)
	}
	return "Summary.", nil
}

func art(title, url string) domain.Article {
	return domain.Article{Title: title, URL: url}
}

func arts(prefix string, n int) []domain.Article {
	out := make([]domain.Article, 0, n)
	for i := range n {
		out = append(out, art(fmt.Sprintf("%s-%d", prefix, i), fmt.Sprintf("https://example.com/%s/%d", prefix, i)))
	}
	return out
}
