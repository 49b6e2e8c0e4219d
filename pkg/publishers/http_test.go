package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
)

func sampleDigest() domain.Digest {
	return domain.Digest{
		Date: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		Sections: []domain.Section{
			{ID: "weather", Heading: "🌤 天氣新聞", Cards: []domain.Card{
				{Article: domain.Article{Title: "颱風", URL: "https://example.com/1"}, Summary: "s"},
			}},
			{ID: "labour", Heading: "👷‍♂️ 勞工議題"},
		},
	}
}

func TestNewDigestSentEvent(t *testing.T) {
	sentAt := time.Date(2026, 10, 19, 7, 1, 0, 0, time.FixedZone("CST", 8*3600))
	evt := NewDigestSentEvent(sampleDigest(), "subject", "reader@example.com", sentAt)

	assert.Equal(t, EventDigestSent, evt.Type)
	assert.Equal(t, "2026-10-19", evt.Date)
	assert.Equal(t, 1, evt.ArticleCount)
	assert.Equal(t, time.UTC, evt.SentAt.Location())
	require.Len(t, evt.Sections, 2)
	assert.Equal(t, []EventArticle{{Title: "颱風", URL: "https://example.com/1"}}, evt.Sections[0].Articles)
	assert.Empty(t, evt.Sections[1].Articles)
	assert.Len(t, evt.ID, 40)

	again := NewDigestSentEvent(sampleDigest(), "subject", "reader@example.com", sentAt)
	assert.Equal(t, evt.ID, again.ID)
}

func TestHTTPPublisherPostsEvent(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := sanitizePublisherConfig(PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL, Method: "put", Headers: map[string]string{"Authorization": "Bearer token"}},
	})
	pub, err := DefaultRegistry().PublisherFor(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, TypeHTTP, pub.Type())

	evt := NewDigestSentEvent(sampleDigest(), "subject", "reader@example.com", time.Now())
	require.NoError(t, pub.Publish(context.Background(), evt))
	assert.Equal(t, evt.ID, got.ID)
	assert.Equal(t, "weather", got.Sections[0].ID)
}

func TestHTTPPublisherRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	cfg := sanitizePublisherConfig(PublisherConfig{ID: "hook", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: srv.URL}})
	pub, err := newHTTPPublisher(context.Background(), cfg, nil)
	require.NoError(t, err)

	err = pub.Publish(context.Background(), Event{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream down")
}
