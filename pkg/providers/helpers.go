package providers

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// snippetLimit bounds how much of an error body ends up in an error message.
const snippetLimit = 512

// publishedLayouts covers NewsAPI timestamps and RSS pubDate values.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// hashURL derives a stable article id from its link.
func hashURL(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}

func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	switch {
	case s == "":
		return "<empty>"
	case len(s) > snippetLimit:
		return s[:snippetLimit] + "..."
	default:
		return s
	}
}

// parsePublishedAt tries each known layout and yields the zero time when none match.
func parsePublishedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// fetchBody issues a GET and returns the body of a 2xx response. Other
// statuses become errors carrying the provider id and a body snippet.
func fetchBody(ctx context.Context, client HTTPClient, url, providerID string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", providerID, err)
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, fmt.Errorf("%s returned status %d body: %s", providerID, code, responseSnippet(body))
	}
	return body, nil
}
