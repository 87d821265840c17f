// Package httpclient builds the pooled HTTP client shared by the Telegram
// transport and the Instagram backend.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Option adjusts a client built by New or copied by Apply.
type Option func(*http.Client)

// NoRedirects hands 3xx responses back to the caller instead of following
// them. Instagram answers a logged-out request with a login redirect.
func NoRedirects() Option {
	return func(c *http.Client) {
		c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
}

// UserAgent sets the User-Agent header on requests that carry none.
func UserAgent(ua string) Option {
	return func(c *http.Client) {
		next := c.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		c.Transport = &userAgentTransport{ua: ua, next: next}
	}
}

type userAgentTransport struct {
	ua   string
	next http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.next.RoundTrip(r)
}

// New returns an HTTP client with connection pooling and an overall
// request timeout. A non-positive timeout selects the default.
func New(timeout time.Duration, opts ...Option) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return Apply(&http.Client{Timeout: timeout, Transport: transport}, opts...)
}

// Apply returns a copy of c with opts applied; c itself is left alone.
// A nil c copies the zero client.
func Apply(c *http.Client, opts ...Option) *http.Client {
	var out http.Client
	if c != nil {
		out = *c
	}
	for _, opt := range opts {
		opt(&out)
	}
	return &out
}
