package features

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// HTTPArtifact is the final response of a page fetch.
type HTTPArtifact struct {
	Status    int
	Body      string
	FinalURL  string
	Redirects int // redirect responses traversed before the final one
	Header    http.Header
}

// PageFetcher retrieves the page behind a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, u ParsedURL) Result[HTTPArtifact]
}

// HTTPFetcher issues a redirect-following GET and keeps the decoded body.
type HTTPFetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// NewHTTPFetcher builds a fetcher with its own client and transport.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 30
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.HTTPTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.HTTPTimeout,
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.HTTPTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}
				return nil
			},
		},
		maxBytes:  cfg.MaxBodyBytes,
		userAgent: cfg.UserAgent,
	}
}

// Fetch requests the original URL. Any transport failure, timeout or body
// decoding problem yields Unavailable; HTTP error statuses do not.
func (f *HTTPFetcher) Fetch(ctx context.Context, u ParsedURL) Result[HTTPArtifact] {
	if u.Invalid || strings.TrimSpace(u.Raw) == "" {
		return Unavailable[HTTPArtifact]("unparsable url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(u.Raw), nil)
	if err != nil {
		return Unavailable[HTTPArtifact](fmt.Sprintf("new request: %v", err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("[HTTP] GET %s failed: %v", u.Raw, err)
		return Unavailable[HTTPArtifact](fmt.Sprintf("http get: %v", err))
	}
	defer resp.Body.Close()

	body, err := readBody(resp, f.maxBytes)
	if err != nil {
		log.Printf("[HTTP] reading body of %s failed: %v", u.Raw, err)
		return Unavailable[HTTPArtifact](fmt.Sprintf("read body: %v", err))
	}

	return Available(HTTPArtifact{
		Status:    resp.StatusCode,
		Body:      body,
		FinalURL:  resp.Request.URL.String(),
		Redirects: countRedirects(resp),
		Header:    resp.Header,
	})
}

// readBody decodes the response into UTF-8 using the declared or sniffed charset.
func readBody(resp *http.Response, limit int64) (string, error) {
	var r io.Reader = resp.Body
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit)
	}
	decoded, err := charset.NewReader(r, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("charset: %w", err)
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// countRedirects walks back from the final response through the responses
// that caused each redirected request.
func countRedirects(resp *http.Response) int {
	n := 0
	for req := resp.Request; req != nil && req.Response != nil; req = req.Response.Request {
		n++
	}
	return n
}
