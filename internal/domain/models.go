package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared by fetchers, the digest builder and the mailer.

// Article is a single search result returned by a news provider.
type Article struct {
	ID          string
	Title       string
	URL         string
	Description string // empty when the provider returned none
	Source      string
	PublishedAt time.Time
}

// HasDescription reports whether the provider supplied a usable description.
func (a Article) HasDescription() bool {
	return strings.TrimSpace(a.Description) != ""
}

// SummaryInput is the text handed to the summarizer: the description, or the
// title when the description is absent.
func (a Article) SummaryInput() string {
	if a.HasDescription() {
		return a.Description
	}
	return a.Title
}

// Card pairs an article with its generated summary.
type Card struct {
	Article Article
	Summary string
}

// Section is one topic group of the digest.
type Section struct {
	ID      string
	Heading string
	Cards   []Card
}

// Digest is the full set of sections assembled for one run.
type Digest struct {
	Date     time.Time
	Sections []Section
}

// ArticleCount returns the total number of cards across all sections.
func (d Digest) ArticleCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Cards)
	}
	return n
}
