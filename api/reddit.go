package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/handsomefox/ridit/internal/retry"
	"golang.org/x/time/rate"
)

const (
	Version = "0.3.0"

	clientTimeout         = time.Minute
	defaultConnectTimeout = 10 * time.Second
	defaultBaseURL        = "https://reddit.com"
	defaultListingLimit   = 100
)

// Client talks to reddit's public JSON endpoints and fetches media.
type Client struct {
	Subreddit *SubredditService

	client  *http.Client
	base    *url.URL
	limiter *rate.Limiter
	retry   retry.Policy

	userAgent string
}

// UserAgent is sent with every request.
func UserAgent() string {
	return fmt.Sprintf("%s:com.github.handsomefox.ridit/v%s (by /u/handsomefox)", runtime.GOOS, Version)
}

func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.client.Timeout = timeout
	return c
}

// WithConnectTimeout bounds only the dial, not the transfer.
func (c *Client) WithConnectTimeout(timeout time.Duration) *Client {
	c.client.Transport = newTransport(timeout)
	return c
}

func (c *Client) WithBaseURL(u *url.URL) *Client {
	c.base = u
	return c
}

func (c *Client) WithRetry(p retry.Policy) *Client {
	c.retry = p
	return c
}

// WithRateLimit replaces the limiter applied to reddit API calls. Media downloads are not limited.
func (c *Client) WithRateLimit(l *rate.Limiter) *Client {
	c.limiter = l
	return c
}

func (c *Client) BaseURL() *url.URL {
	return c.base
}

// GetURL issues a GET with the retry policy. On success the caller owns the body.
// Non-2xx responses are returned as *StatusError, 429 and 5xx are retried first.
func (c *Client) GetURL(ctx context.Context, surl string) (*http.Response, error) {
	return c.get(ctx, surl, nil, false)
}

// GetRange reads at most limit bytes from the start of surl.
// Servers that ignore the Range header are cut off after limit bytes.
func (c *Client) GetRange(ctx context.Context, surl string, limit int64) ([]byte, error) {
	header := http.Header{}
	header.Set("Range", fmt.Sprintf("bytes=0-%d", limit-1))

	return retry.DoWithResult(ctx, c.retry, func() ([]byte, error) {
		res, err := c.do(ctx, surl, header, false)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		b, err := io.ReadAll(io.LimitReader(res.Body, limit))
		if err != nil {
			return nil, fmt.Errorf("%w: partial read from %s", err, surl)
		}
		return b, nil
	})
}

func (c *Client) get(ctx context.Context, surl string, header http.Header, limited bool) (*http.Response, error) {
	return retry.DoWithResult(ctx, c.retry, func() (*http.Response, error) {
		return c.do(ctx, surl, header, limited)
	})
}

// do performs a single attempt and classifies the failure for the retry policy.
func (c *Client) do(ctx context.Context, surl string, header http.Header, limited bool) (*http.Response, error) {
	if limited && c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, retry.Permanent(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, surl, http.NoBody)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Add("User-Agent", c.userAgent)

	res, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		res.Body.Close()

		serr := NewStatusError(surl, res.StatusCode)
		if serr.Temporary() {
			return nil, serr
		}
		return nil, retry.Permanent(serr)
	}

	return res, nil
}

func newTransport(connectTimeout time.Duration) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSNextProto:        map[string]func(authority string, c *tls.Conn) http.RoundTripper{},
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
}

func DefaultClient() *Client {
	baseURL, _ := url.Parse(defaultBaseURL)
	c := &Client{
		client: &http.Client{
			Transport: newTransport(defaultConnectTimeout),
			Timeout:   clientTimeout,
		},
		base:      baseURL,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 5),
		retry:     retry.Default(),
		userAgent: UserAgent(),
	}
	c.Subreddit = &SubredditService{
		client: c,
	}
	return c
}
