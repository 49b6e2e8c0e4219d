// Package httpclient wraps resty behind a small interface so fetchers and
// publishers can be tested against stubs.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "khobor-mailer/1.0"

// Response is the subset of an HTTP response used by callers.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client performs HTTP requests.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}

// RestyClient implements Client on top of resty.
type RestyClient struct {
	rc *resty.Client
}

// NewRestyClient builds a client with the given per-request timeout. Retries
// are left disabled.
func NewRestyClient(timeout time.Duration) *RestyClient {
	rc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", defaultUserAgent)
	return &RestyClient{rc: rc}
}

// Get issues a GET request.
func (c *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return c.Do(ctx, resty.MethodGet, url, headers, nil)
}

// Post issues a POST request; body is JSON-encoded by resty unless it is
// already a string or []byte.
func (c *RestyClient) Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	return c.Do(ctx, resty.MethodPost, url, headers, body)
}

// Do issues a request with an arbitrary method.
func (c *RestyClient) Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req := c.rc.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, redactURL(url), stripURLError(err))
	}
	return resp, nil
}

// redactURL drops the query string and user info, which may carry credentials.
func redactURL(raw string) string {
	u, err := neturl.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	return u.String()
}

// stripURLError unwraps *url.Error so the full request URL does not leak into
// the message.
func stripURLError(err error) error {
	var uerr *neturl.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
