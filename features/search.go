package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

// ErrSearchDisabled is the reason reported when no search index is configured.
var ErrSearchDisabled = errors.New("search probe disabled")

// Keyless results page used by the "browser" strategy when no template is set.
const (
	DefaultBrowserTemplate = "https://html.duckduckgo.com/html/?q={query}"
	DefaultBrowserSelector = "a.result__a"
)

// IndexProbe reports whether a URL is present in a public search index.
type IndexProbe interface {
	Fetch(ctx context.Context, u ParsedURL) Result[bool]
}

// NewSearchProbe picks the probe implementation named by cfg.Search.Strategy.
func NewSearchProbe(cfg Config) IndexProbe {
	switch strings.ToLower(cfg.Search.Strategy) {
	case "api":
		return NewAPISearchProbe(cfg.Search, &http.Client{Timeout: cfg.SearchTimeout})
	case "browser":
		sc := cfg.Search
		if sc.URLTemplate == "" {
			sc.URLTemplate = DefaultBrowserTemplate
			if sc.ResultSelector == "" {
				sc.ResultSelector = DefaultBrowserSelector
			}
		}
		return NewBrowserSearchProbe(sc, cfg.UserAgent)
	case "":
		return disabledProbe{}
	default:
		log.Printf("[SEARCH] unknown strategy %q, probe disabled", cfg.Search.Strategy)
		return disabledProbe{}
	}
}

type disabledProbe struct{}

func (disabledProbe) Fetch(context.Context, ParsedURL) Result[bool] {
	return Unavailable[bool](ErrSearchDisabled.Error())
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func searchURL(template, rawURL string) string {
	return strings.ReplaceAll(template, "{query}", url.QueryEscape(strings.TrimSpace(rawURL)))
}

// APISearchProbe queries a JSON search API (e.g. Brave Search) and counts the
// entries of the results array.
type APISearchProbe struct {
	cfg     SearchConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewAPISearchProbe creates an API-backed probe. A nil client uses http.DefaultClient.
func NewAPISearchProbe(cfg SearchConfig, client *http.Client) *APISearchProbe {
	if client == nil {
		client = http.DefaultClient
	}
	return &APISearchProbe{cfg: cfg, client: client, limiter: newLimiter(cfg.RateLimit)}
}

// Fetch runs the query and reports whether any result came back.
func (p *APISearchProbe) Fetch(ctx context.Context, u ParsedURL) Result[bool] {
	if p.cfg.URLTemplate == "" || strings.TrimSpace(u.Raw) == "" {
		return Unavailable[bool](ErrSearchDisabled.Error())
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Unavailable[bool](fmt.Sprintf("rate limit: %v", err))
		}
	}

	found, err := p.query(ctx, searchURL(p.cfg.URLTemplate, u.Raw))
	if err != nil {
		log.Printf("[SEARCH] api query for %s failed: %v", u.Raw, err)
		return Unavailable[bool](err.Error())
	}
	return Available(found)
}

func (p *APISearchProbe) query(ctx context.Context, target string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.cfg.APIKey != "" {
		header := p.cfg.APIKeyHeader
		if header == "" {
			header = "Authorization"
		}
		req.Header.Set(header, p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("search api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("search api: status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode: %w", err)
	}
	return countResults(payload, p.cfg.ResultPath)
}

// countResults follows a dotted path ("web.results") to the results array.
// A missing key means the index returned nothing.
func countResults(payload any, path string) (bool, error) {
	node := payload
	if path != "" {
		for _, key := range strings.Split(path, ".") {
			obj, ok := node.(map[string]any)
			if !ok {
				return false, fmt.Errorf("result path %q: %q is not an object", path, key)
			}
			next, ok := obj[key]
			if !ok {
				return false, nil
			}
			node = next
		}
	}
	switch v := node.(type) {
	case []any:
		return len(v) > 0, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("result path %q is not an array", path)
	}
}

// BrowserSearchProbe renders a search results page in headless Chrome and
// looks for result links.
type BrowserSearchProbe struct {
	cfg       SearchConfig
	userAgent string
	limiter   *rate.Limiter
}

// NewBrowserSearchProbe creates a chromedp-backed probe.
func NewBrowserSearchProbe(cfg SearchConfig, userAgent string) *BrowserSearchProbe {
	return &BrowserSearchProbe{cfg: cfg, userAgent: userAgent, limiter: newLimiter(cfg.RateLimit)}
}

// Fetch renders the results page and reports whether it lists any result.
func (p *BrowserSearchProbe) Fetch(ctx context.Context, u ParsedURL) Result[bool] {
	if p.cfg.URLTemplate == "" || strings.TrimSpace(u.Raw) == "" {
		return Unavailable[bool](ErrSearchDisabled.Error())
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Unavailable[bool](fmt.Sprintf("rate limit: %v", err))
		}
	}

	page, err := p.render(ctx, searchURL(p.cfg.URLTemplate, u.Raw))
	if err != nil {
		log.Printf("[SEARCH] browser query for %s failed: %v", u.Raw, err)
		return Unavailable[bool](fmt.Sprintf("browser: %v", err))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Unavailable[bool](fmt.Sprintf("parse results: %v", err))
	}
	return Available(countResultLinks(doc, p.cfg.ResultSelector) > 0)
}

func (p *BrowserSearchProbe) render(ctx context.Context, target string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
	)
	if p.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(p.userAgent))
	}
	if p.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	return html, err
}

// countResultLinks counts elements matching selector that sit in (or are) an
// anchor pointing to an absolute http(s) URL.
func countResultLinks(doc *goquery.Document, selector string) int {
	if selector == "" {
		selector = "a[href]"
	}
	n := 0
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		a := s
		if goquery.NodeName(s) != "a" {
			a = s.Closest("a[href]")
		}
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") || strings.HasPrefix(href, "//") {
			n++
		}
	})
	return n
}
