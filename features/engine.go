package features

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// Engine gathers the artifacts of a URL and evaluates the rules against them.
// One Engine serves any number of concurrent extractions.
type Engine struct {
	cfg      Config
	patterns *Patterns

	page   PageFetcher
	whois  WhoisLookup
	dns    AddressLookup
	search IndexProbe
	now    func() time.Time
}

// Fetchers overrides the network-facing parts of an Engine. Nil fields are
// treated as permanently unavailable.
type Fetchers struct {
	Page   PageFetcher
	Whois  WhoisLookup
	DNS    AddressLookup
	Search IndexProbe
	Now    func() time.Time
}

// NewEngine wires the production fetchers from cfg.
func NewEngine(cfg Config, patterns *Patterns) *Engine {
	return NewEngineWith(cfg, patterns, Fetchers{
		Page:   NewHTTPFetcher(cfg),
		Whois:  NewWhoisFetcher(cfg),
		DNS:    NewDNSResolver(cfg),
		Search: NewSearchProbe(cfg),
	})
}

// NewEngineWith builds an Engine around the given fetchers.
func NewEngineWith(cfg Config, patterns *Patterns, f Fetchers) *Engine {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = DefaultConfig().ExtractTimeout
	}
	e := &Engine{
		cfg:      cfg,
		patterns: patterns,
		page:     f.Page,
		whois:    f.Whois,
		dns:      f.DNS,
		search:   f.Search,
		now:      f.Now,
	}
	if e.page == nil {
		e.page = missing[HTTPArtifact]{}
	}
	if e.whois == nil {
		e.whois = missing[WhoisRecord]{}
	}
	if e.dns == nil {
		e.dns = missing[DNSRecord]{}
	}
	if e.search == nil {
		e.search = disabledProbe{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Patterns returns the blocklists the engine evaluates against.
func (e *Engine) Patterns() *Patterns { return e.patterns }

type missing[T any] struct{}

func (missing[T]) Fetch(context.Context, ParsedURL) Result[T] {
	return Unavailable[T]("not configured")
}

// ArtifactStatus summarizes what one extraction managed to gather.
type ArtifactStatus struct {
	HTTP       string `json:"http"`
	HTTPStatus int    `json:"http_status,omitempty"`
	FinalURL   string `json:"final_url,omitempty"`
	Redirects  int    `json:"redirects"`
	Whois      string `json:"whois"`
	Created    string `json:"created,omitempty"`
	Expires    string `json:"expires,omitempty"`
	DNS        string `json:"dns"`
	ResolvedIP string `json:"resolved_ip,omitempty"`
	Search     string `json:"search"`
}

// Report is the vector of one extraction plus the state of its artifacts.
type Report struct {
	URL       string         `json:"url"`
	Features  []int          `json:"features"`
	Named     map[string]int `json:"named"`
	Artifacts ArtifactStatus `json:"artifacts"`
	Elapsed   string         `json:"elapsed"`

	Vector Vector `json:"-"`
}

// Extract returns the 30 feature scores of rawURL. It never fails: anything
// that cannot be fetched within the deadline scores its fallback.
func (e *Engine) Extract(ctx context.Context, rawURL string) Vector {
	return e.Inspect(ctx, rawURL).Vector
}

// Inspect is Extract with the artifact summary attached.
func (e *Engine) Inspect(ctx context.Context, rawURL string) Report {
	start := time.Now()
	a := e.gather(ctx, ParseURL(rawURL))
	v := Evaluate(a)
	elapsed := time.Since(start)

	log.Printf("[ENGINE] extracted %s in %s (http=%t whois=%t dns=%t search=%t)",
		rawURL, elapsed.Round(time.Millisecond), a.Page.OK(), a.Whois.OK(), a.DNS.OK(), a.Indexed.OK())

	return Report{
		URL:       rawURL,
		Features:  v.Slice(),
		Named:     v.Named(),
		Artifacts: summarize(a),
		Elapsed:   elapsed.Round(time.Millisecond).String(),
		Vector:    v,
	}
}

// gather runs the four fetchers concurrently. Every fetch settles, either
// with its own result or as Unavailable once its timeout or the extraction
// deadline passes.
func (e *Engine) gather(ctx context.Context, u ParsedURL) Artifacts {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExtractTimeout)
	defer cancel()

	a := Artifacts{URL: u, Patterns: e.patterns, Now: e.now()}

	g, gctx := errgroup.WithContext(ctx)

	// Page
	g.Go(func() error {
		a.Page = settle(gctx, e.cfg.HTTPTimeout, "http", func(c context.Context) Result[HTTPArtifact] {
			return e.page.Fetch(c, u)
		})
		return nil
	})

	// WHOIS
	g.Go(func() error {
		a.Whois = settle(gctx, e.cfg.WhoisTimeout, "whois", func(c context.Context) Result[WhoisRecord] {
			return e.whois.Fetch(c, u)
		})
		return nil
	})

	// DNS
	g.Go(func() error {
		a.DNS = settle(gctx, e.cfg.DNSTimeout, "dns", func(c context.Context) Result[DNSRecord] {
			return e.dns.Fetch(c, u)
		})
		return nil
	})

	// Search index
	g.Go(func() error {
		a.Indexed = settle(gctx, e.cfg.SearchTimeout, "search", func(c context.Context) Result[bool] {
			return e.search.Fetch(c, u)
		})
		return nil
	})

	_ = g.Wait()

	a.Doc = ParseDocument(a.Page)
	return a
}

// settle runs fetch under its own timeout and stops waiting for it when ctx
// ends. A panicking fetcher counts as unavailable.
func settle[T any](ctx context.Context, timeout time.Duration, name string, fetch func(context.Context) Result[T]) Result[T] {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ch := make(chan Result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ENGINE] %s fetcher panicked: %v", name, r)
				ch <- Unavailable[T](fmt.Sprintf("%s: panic: %v", name, r))
			}
		}()
		ch <- fetch(ctx)
	}()

	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		log.Printf("[ENGINE] %s fetch abandoned: %v", name, ctx.Err())
		return Unavailable[T](fmt.Sprintf("%s: %v", name, ctx.Err()))
	}
}

func summarize(a Artifacts) ArtifactStatus {
	s := ArtifactStatus{
		HTTP:   a.Page.Status(),
		Whois:  a.Whois.Status(),
		DNS:    a.DNS.Status(),
		Search: a.Indexed.Status(),
	}
	if page, ok := a.Page.Get(); ok {
		s.HTTPStatus = page.Status
		s.FinalURL = page.FinalURL
		s.Redirects = page.Redirects
	}
	if rec, ok := a.Whois.Get(); ok {
		if t, ok := rec.CreatedAt(); ok {
			s.Created = t.Format("2006-01-02")
		}
		if t, ok := rec.ExpiresAt(); ok {
			s.Expires = t.Format("2006-01-02")
		}
	}
	if rec, ok := a.DNS.Get(); ok {
		s.ResolvedIP = rec.Primary()
	}
	if found, ok := a.Indexed.Get(); ok {
		if found {
			s.Search = "ok: indexed"
		} else {
			s.Search = "ok: not indexed"
		}
	}
	return s
}
