package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Adda-Baaj/khobor-mailer/internal/config"
	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
	"github.com/Adda-Baaj/khobor-mailer/internal/logger"
	"github.com/Adda-Baaj/khobor-mailer/pkg/mailer"
	"github.com/Adda-Baaj/khobor-mailer/pkg/providers"
	"github.com/Adda-Baaj/khobor-mailer/pkg/publishers"
	"github.com/Adda-Baaj/khobor-mailer/pkg/summarizer"
)

type weatherOnlyFetcher struct{}

func (weatherOnlyFetcher) ID() string { return "stub" }

func (weatherOnlyFetcher) Fetch(_ context.Context, q providers.Query) ([]domain.Article, error) {
	if q.Text != "台灣 天氣" {
		return nil, nil
	}
	return []domain.Article{
		{Title: "北部轉涼", Description: "東北季風南下", URL: "https://example.com/weather/1"},
		{Title: "南部高溫", URL: "https://example.com/weather/2"},
	}, nil
}

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

type recordingPublisher struct {
	events []publishers.Event
}

func (p *recordingPublisher) ID() string   { return "rec" }
func (p *recordingPublisher) Type() string { return "stub" }
func (p *recordingPublisher) Publish(_ context.Context, evt publishers.Event) error {
	p.events = append(p.events, evt)
	return errors.New("sink offline")
}

func testConfig() *config.Config {
	return &config.Config{
		NewsProvider:       config.ProviderNewsAPI,
		NewsLanguage:       "zh",
		NewsPageSize:       10,
		HTTPTimeout:        time.Second,
		SummarizerProvider: config.SummarizerOpenAI,
		SummaryWorkers:     1,
		SMTPHost:           "smtp.gmail.com",
		SMTPPort:           587,
		SenderEmail:        "sender@gmail.com",
		SenderAppPassword:  "pw",
		ReceiverEmail:      "reader@example.com",
		MailSubject:        config.DefaultSubject,
		Timezone:           "Asia/Taipei",
	}
}

var fixedClock = func() time.Time { return time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC) }

func TestRunSendsDigestWithWeatherCards(t *testing.T) {
	m := &recordingMailer{}
	fixed := summarizer.Func(func(context.Context, string) (string, error) { return "Summary.", nil })

	res, err := RunOnce(context.Background(), testConfig(), nil,
		WithFetcher(weatherOnlyFetcher{}),
		WithSummarizer(fixed),
		WithMailer(m),
		WithClock(fixedClock),
	)
	require.NoError(t, err)

	assert.True(t, res.Sent)
	assert.Equal(t, 4, res.Sections)
	assert.Equal(t, 2, res.Articles)

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, res.HTML, msg.HTML)
	assert.Equal(t, "sender@gmail.com", msg.From)
	assert.Equal(t, "reader@example.com", msg.To)
	assert.Equal(t, "每日 7 點新聞摘要（AI 自動整理）", msg.Subject)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(msg.HTML))
	require.NoError(t, err)

	assert.Equal(t, "📩 每日新聞摘要（2026-10-19）", doc.Find("h2").First().Text())
	assert.Equal(t, 5, doc.Find("h2").Length())

	cards := doc.Find("div:has(h3)")
	require.Equal(t, 2, cards.Length())
	wantLinks := []string{"https://example.com/weather/1", "https://example.com/weather/2"}
	cards.Each(func(i int, card *goquery.Selection) {
		assert.Contains(t, card.Text(), "Summary.")
		href, _ := card.Find("a").Attr("href")
		assert.Equal(t, wantLinks[i], href)
	})

	// weather heading is immediately followed by the two cards
	assert.Equal(t, 2, doc.Find("h2").Eq(1).NextUntil("h2").Length())
}

func TestRunMailErrorFailsRun(t *testing.T) {
	m := &recordingMailer{err: errors.New("smtp auth: 535")}
	pub := &recordingPublisher{}

	_, err := RunOnce(context.Background(), testConfig(), nil,
		WithFetcher(weatherOnlyFetcher{}),
		WithSummarizer(summarizer.Func(func(context.Context, string) (string, error) { return "s", nil })),
		WithMailer(m),
		WithPublishers([]publishers.Publisher{pub}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send digest")
	assert.Empty(t, pub.events)
}

func TestRunSummaryErrorSendsNothing(t *testing.T) {
	m := &recordingMailer{}
	_, err := RunOnce(context.Background(), testConfig(), nil,
		WithFetcher(weatherOnlyFetcher{}),
		WithSummarizer(summarizer.Func(func(context.Context, string) (string, error) { return "", errors.New("rate limited") })),
		WithMailer(m),
	)
	require.ErrorContains(t, err, "rate limited")
	assert.Empty(t, m.sent)
}

func TestRunPublisherFailureIsLoggedOnly(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	pub := &recordingPublisher{}

	res, err := RunOnce(context.Background(), testConfig(), logger.NewFromZap(zap.New(core)),
		WithFetcher(weatherOnlyFetcher{}),
		WithSummarizer(summarizer.Func(func(context.Context, string) (string, error) { return "s", nil })),
		WithMailer(&recordingMailer{}),
		WithPublishers([]publishers.Publisher{pub}),
		WithClock(fixedClock),
	)
	require.NoError(t, err)
	assert.True(t, res.Sent)

	require.Len(t, pub.events, 1)
	assert.Equal(t, publishers.EventDigestSent, pub.events[0].Type)
	assert.Equal(t, "2026-10-19", pub.events[0].Date)
	assert.Equal(t, 2, pub.events[0].ArticleCount)

	for _, event := range []string{"run_start", "section_fetched", "digest_rendered", "publisher_delivery", "run_complete"} {
		assert.NotZero(t, logs.FilterField(zap.String("event", event)).Len(), event)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.NewsProvider = "bing"

	_, err := New(context.Background(), cfg, nil,
		WithSummarizer(summarizer.Func(func(context.Context, string) (string, error) { return "", nil })),
		WithMailer(&recordingMailer{}),
	)
	assert.ErrorContains(t, err, `no fetcher registered for provider "bing"`)
}

func TestNewBuildsConfiguredComponents(t *testing.T) {
	cfg := testConfig()
	cfg.NewsAPIKey = "k"
	cfg.OpenAIAPIKey = "k"
	cfg.OpenAIModel = "gpt-4o-mini"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, providers.ProviderNewsAPI, a.fetcher.ID())
	assert.IsType(t, &summarizer.OpenAI{}, a.summarizer)
	assert.IsType(t, &mailer.SMTPMailer{}, a.mailer)
	assert.Len(t, a.sections, 4)
}
