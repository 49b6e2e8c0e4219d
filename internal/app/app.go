// Package app wires the configured components and runs one digest cycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-mailer/internal/config"
	"github.com/Adda-Baaj/khobor-mailer/internal/digest"
	"github.com/Adda-Baaj/khobor-mailer/internal/logger"
	"github.com/Adda-Baaj/khobor-mailer/pkg/httpclient"
	"github.com/Adda-Baaj/khobor-mailer/pkg/mailer"
	"github.com/Adda-Baaj/khobor-mailer/pkg/providers"
	"github.com/Adda-Baaj/khobor-mailer/pkg/publishers"
	"github.com/Adda-Baaj/khobor-mailer/pkg/summarizer"
)

// Result summarises a finished run.
type Result struct {
	Sent     bool   `json:"sent"`
	Sections int    `json:"sections"`
	Articles int    `json:"articles"`
	HTML     string `json:"-"`
}

// Option overrides a component built by New.
type Option func(*App)

// WithFetcher replaces the configured news provider.
func WithFetcher(f providers.Fetcher) Option { return func(a *App) { a.fetcher = f } }

// WithSummarizer replaces the configured language model.
func WithSummarizer(s digest.Summarizer) Option { return func(a *App) { a.summarizer = s } }

// WithMailer replaces the SMTP mailer.
func WithMailer(m mailer.Mailer) Option { return func(a *App) { a.mailer = m } }

// WithPublishers replaces the publishers loaded from PUBLISHERS_FILE.
func WithPublishers(p []publishers.Publisher) Option {
	return func(a *App) {
		a.publishers = p
		a.publishersSet = true
	}
}

// WithSections replaces the sections loaded from SECTIONS_FILE.
func WithSections(s []config.Section) Option { return func(a *App) { a.sections = s } }

// WithClock overrides the clock used for the digest date and event time.
func WithClock(now func() time.Time) Option { return func(a *App) { a.now = now } }

// App runs the fetch, summarize, render and send cycle.
type App struct {
	cfg *config.Config
	log logger.Logger

	fetcher       providers.Fetcher
	summarizer    digest.Summarizer
	mailer        mailer.Mailer
	publishers    []publishers.Publisher
	publishersSet bool
	sections      []config.Section
	now           func() time.Time

	builder  *digest.Builder
	renderer *digest.Renderer
	closers  []func() error
}

// New builds the application from cfg. Components not supplied through
// options are constructed from the configuration.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	a := &App{cfg: cfg, log: logger.Ensure(log), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	var err error

	if a.sections == nil {
		if a.sections, err = config.ResolveSections(a.cfg.SectionsFile); err != nil {
			return err
		}
	}

	if a.fetcher == nil {
		client := httpclient.NewRestyClient(a.cfg.HTTPTimeout)
		reg := providers.DefaultFetcherRegistry(client,
			providers.NewsAPIConfig{BaseURL: a.cfg.NewsAPIBaseURL, APIKey: a.cfg.NewsAPIKey},
			providers.GoogleNewsConfig{},
		)
		if a.fetcher, err = reg.FetcherFor(a.cfg.NewsProvider); err != nil {
			return err
		}
	}

	if a.summarizer == nil {
		if a.summarizer, err = a.buildSummarizer(ctx); err != nil {
			return err
		}
	}

	if a.mailer == nil {
		a.mailer, err = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     a.cfg.SMTPHost,
			Port:     a.cfg.SMTPPort,
			Username: a.cfg.SenderEmail,
			Password: a.cfg.SenderAppPassword,
		}, a.log)
		if err != nil {
			return err
		}
	}

	if !a.publishersSet && a.cfg.PublishersFile != "" {
		reg, err := publishers.LoadRegistry(a.cfg.PublishersFile)
		if err != nil {
			return err
		}
		if a.publishers, err = publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), a.log); err != nil {
			return err
		}
		owned := a.publishers
		a.closers = append(a.closers, func() error { publishers.CloseAll(owned); return nil })
	}

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	a.builder, err = digest.NewBuilder(a.fetcher, a.summarizer, a.sections, digest.Options{
		Language:       a.cfg.NewsLanguage,
		PageSize:       a.cfg.NewsPageSize,
		SummaryWorkers: a.cfg.SummaryWorkers,
		SummaryTimeout: a.cfg.SummaryTimeout,
		Location:       loc,
		Now:            a.now,
	}, a.log)
	if err != nil {
		return err
	}

	a.renderer, err = digest.NewRenderer()
	return err
}

func (a *App) buildSummarizer(ctx context.Context) (digest.Summarizer, error) {
	switch a.cfg.SummarizerProvider {
	case summarizer.ProviderOpenAI, "":
		return summarizer.NewOpenAI(summarizer.OpenAIConfig{
			APIKey:  a.cfg.OpenAIAPIKey,
			Model:   a.cfg.OpenAIModel,
			BaseURL: a.cfg.OpenAIBaseURL,
			Timeout: a.cfg.HTTPTimeout,
		})
	case summarizer.ProviderGemini:
		g, err := summarizer.NewGemini(ctx, summarizer.GeminiConfig{APIKey: a.cfg.GeminiAPIKey, Model: a.cfg.GeminiModel})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported summarizer provider %q", a.cfg.SummarizerProvider)
	}
}

// Run performs exactly one cycle. Publisher failures are logged and do not
// fail the run once the mail is out.
func (a *App) Run(ctx context.Context) (Result, error) {
	started := a.now()
	a.log.InfoObj("digest run started", "run_start", map[string]any{
		"provider":   a.fetcher.ID(),
		"sections":   len(a.sections),
		"summarizer": a.cfg.SummarizerProvider,
		"workers":    a.cfg.SummaryWorkers,
	})

	d, err := a.builder.Build(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("build digest: %w", err)
	}

	html, err := a.renderer.Render(d)
	if err != nil {
		return Result{}, fmt.Errorf("render digest: %w", err)
	}
	a.log.InfoObj("digest rendered", "digest_rendered", map[string]any{
		"date":     d.Date.Format(digest.DateLayout),
		"articles": d.ArticleCount(),
		"bytes":    len(html),
	})

	msg := mailer.Message{
		From:    a.cfg.SenderEmail,
		To:      a.cfg.ReceiverEmail,
		Subject: a.cfg.MailSubject,
		HTML:    html,
	}
	if err := a.mailer.Send(ctx, msg); err != nil {
		return Result{}, fmt.Errorf("send digest: %w", err)
	}

	res := Result{Sent: true, Sections: len(d.Sections), Articles: d.ArticleCount(), HTML: html}

	if len(a.publishers) > 0 {
		evt := publishers.NewDigestSentEvent(d, msg.Subject, msg.To, a.now())
		publishers.PublishAll(ctx, a.publishers, evt, a.log)
	}

	a.log.InfoObj("digest run complete", "run_complete", map[string]any{
		"sections":    res.Sections,
		"articles":    res.Articles,
		"duration_ms": a.now().Sub(started).Milliseconds(),
	})
	return res, nil
}

// Close releases clients owned by the App.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RunOnce builds an App from cfg, runs one cycle and closes it.
func RunOnce(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (Result, error) {
	a, err := New(ctx, cfg, log, opts...)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = a.Close() }()

	return a.Run(ctx)
}
