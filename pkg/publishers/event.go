// Package publishers fans a run notification out to optional sinks (HTTP
// webhooks and cloud queues) after the digest mail has been delivered.
package publishers

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"time"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
	"github.com/Adda-Baaj/khobor-mailer/internal/logger"
)

// EventDigestSent is the type of the event published after a successful send.
const EventDigestSent = "digest.sent"

// Logger is the logging surface used by publishers.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	return logger.Ensure(log)
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Event describes a delivered digest.
type Event struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Date         string         `json:"date"`
	Subject      string         `json:"subject"`
	Recipient    string         `json:"recipient"`
	SentAt       time.Time      `json:"sent_at"`
	ArticleCount int            `json:"article_count"`
	Sections     []EventSection `json:"sections"`
}

// EventSection lists the articles mailed under one heading.
type EventSection struct {
	ID       string         `json:"id"`
	Heading  string         `json:"heading"`
	Articles []EventArticle `json:"articles"`
}

// EventArticle is the title and link of one mailed article.
type EventArticle struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NewDigestSentEvent builds the digest.sent event for d.
func NewDigestSentEvent(d domain.Digest, subject, recipient string, sentAt time.Time) Event {
	date := d.Date.Format("2006-01-02")
	sum := sha1.Sum([]byte(date + "|" + recipient + "|" + sentAt.UTC().Format(time.RFC3339Nano)))

	evt := Event{
		ID:           hex.EncodeToString(sum[:]),
		Type:         EventDigestSent,
		Date:         date,
		Subject:      subject,
		Recipient:    recipient,
		SentAt:       sentAt.UTC(),
		ArticleCount: d.ArticleCount(),
		Sections:     make([]EventSection, 0, len(d.Sections)),
	}
	for _, s := range d.Sections {
		es := EventSection{ID: s.ID, Heading: s.Heading, Articles: make([]EventArticle, 0, len(s.Cards))}
		for _, c := range s.Cards {
			es.Articles = append(es.Articles, EventArticle{Title: c.Article.Title, URL: c.Article.URL})
		}
		evt.Sections = append(evt.Sections, es)
	}
	return evt
}

// attributes are the string attributes attached to queue messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type":  e.Type,
		"digest_date": e.Date,
	}
}
