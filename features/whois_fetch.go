package features

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
)

// WhoisRecord is the registration data of a domain. Registries may list
// several candidate dates; the first one is authoritative.
type WhoisRecord struct {
	Domain  string
	Created []time.Time
	Expires []time.Time
	Raw     string
}

// CreatedAt returns the authoritative creation date, if any.
func (w WhoisRecord) CreatedAt() (time.Time, bool) { return first(w.Created) }

// ExpiresAt returns the authoritative expiration date, if any.
func (w WhoisRecord) ExpiresAt() (time.Time, bool) { return first(w.Expires) }

func first(ts []time.Time) (time.Time, bool) {
	if len(ts) == 0 {
		return time.Time{}, false
	}
	return ts[0], true
}

// WhoisClient is the raw lookup used by WhoisFetcher; *whois.Client satisfies it.
type WhoisClient interface {
	Whois(domain string, servers ...string) (string, error)
}

// WhoisLookup retrieves the registration record behind a URL.
type WhoisLookup interface {
	Fetch(ctx context.Context, u ParsedURL) Result[WhoisRecord]
}

// WhoisFetcher queries WHOIS for the registrable domain of a host.
type WhoisFetcher struct {
	client WhoisClient
}

// NewWhoisFetcher creates a fetcher backed by a likexian/whois client.
func NewWhoisFetcher(cfg Config) *WhoisFetcher {
	c := whois.NewClient()
	if cfg.WhoisTimeout > 0 {
		c.SetTimeout(cfg.WhoisTimeout)
	}
	return &WhoisFetcher{client: c}
}

// NewWhoisFetcherWithClient wraps an existing client.
func NewWhoisFetcherWithClient(c WhoisClient) *WhoisFetcher {
	return &WhoisFetcher{client: c}
}

type whoisReply struct {
	raw string
	err error
}

// Fetch looks up and parses the record. The underlying client has no context
// support, so the lookup is raced against ctx.
func (f *WhoisFetcher) Fetch(ctx context.Context, u ParsedURL) Result[WhoisRecord] {
	domain := u.RegistrableDomain()
	if domain == "" {
		return Unavailable[WhoisRecord]("no host")
	}

	ch := make(chan whoisReply, 1)
	go func() {
		raw, err := f.client.Whois(domain)
		ch <- whoisReply{raw: raw, err: err}
	}()

	var reply whoisReply
	select {
	case <-ctx.Done():
		log.Printf("[WHOIS] lookup for %s abandoned: %v", domain, ctx.Err())
		return Unavailable[WhoisRecord](fmt.Sprintf("whois: %v", ctx.Err()))
	case reply = <-ch:
	}
	if reply.err != nil {
		log.Printf("[WHOIS] lookup failed for %s: %v", domain, reply.err)
		return Unavailable[WhoisRecord](fmt.Sprintf("whois: %v", reply.err))
	}

	if notFoundReply(reply.raw) {
		log.Printf("[WHOIS] %s is not registered", domain)
		return Unavailable[WhoisRecord]("whois: domain not found")
	}
	info, err := parser.Parse(reply.raw)
	if err != nil {
		log.Printf("[WHOIS] no usable record for %s: %v", domain, err)
		return Unavailable[WhoisRecord](fmt.Sprintf("whois parse: %v", err))
	}
	if info.Domain == nil {
		log.Printf("[WHOIS] no domain section for %s", domain)
		return Unavailable[WhoisRecord]("whois: no domain section")
	}
	rec := recordFromInfo(domain, reply.raw, info)
	if info.Domain.Domain == "" && len(rec.Created) == 0 && len(rec.Expires) == 0 {
		log.Printf("[WHOIS] empty record for %s", domain)
		return Unavailable[WhoisRecord]("whois: empty record")
	}
	return Available(rec)
}

// Registry replies for unregistered names. Only line prefixes are matched so
// that disclaimers quoting these words do not count.
var notFoundPrefixes = []string{
	"no match",
	"not found",
	"no data found",
	"no entries found",
	"no object found",
	"domain not found",
	"the queried object does not exist",
	"status: free",
	"status: available",
	"% no such domain",
	"%% no entries found",
}

func notFoundReply(raw string) bool {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		for _, prefix := range notFoundPrefixes {
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}
	}
	return false
}

func recordFromInfo(domain, raw string, info parser.WhoisInfo) WhoisRecord {
	rec := WhoisRecord{Domain: domain, Raw: raw}
	if info.Domain == nil {
		return rec
	}
	if info.Domain.Domain != "" {
		rec.Domain = strings.ToLower(info.Domain.Domain)
	}
	rec.Created = parseWhoisDates(info.Domain.CreatedDate)
	rec.Expires = parseWhoisDates(info.Domain.ExpirationDate)
	return rec
}

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05-07",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-2006 15:04:05 MST",
	"2006.01.02",
	"2006.01.02 15:04:05",
	"02.01.2006",
	"2006/01/02",
	"02/01/2006",
	"January 2 2006",
	"Mon Jan 2 15:04:05 MST 2006",
}

// parseWhoisDates splits a possibly multi-valued date field and parses every
// candidate it can, preserving order.
func parseWhoisDates(s string) []time.Time {
	var out []time.Time
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, layout := range whoisDateLayouts {
			if t, err := time.Parse(layout, part); err == nil {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
