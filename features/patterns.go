package features

import (
	_ "embed"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatternsYAML []byte

// Patterns is the read-only blocklist configuration shared by all
// extractions. It is built once at startup and never modified.
type Patterns struct {
	shorteners       []string
	maliciousDomains []string
	maliciousIPs     map[string]struct{}
}

type patternsFile struct {
	Shorteners       []string `yaml:"shorteners"`
	MaliciousDomains []string `yaml:"malicious_domains"`
	MaliciousIPs     []string `yaml:"malicious_ips"`
}

// NewPatterns normalizes the given lists into a Patterns value.
func NewPatterns(shorteners, maliciousDomains, maliciousIPs []string) *Patterns {
	p := &Patterns{
		shorteners:       normalizeList(shorteners),
		maliciousDomains: normalizeList(maliciousDomains),
		maliciousIPs:     make(map[string]struct{}, len(maliciousIPs)),
	}
	for _, raw := range maliciousIPs {
		ip := net.ParseIP(strings.TrimSpace(raw))
		if ip == nil {
			log.Printf("[PATTERNS] skipping invalid IP literal %q", raw)
			continue
		}
		p.maliciousIPs[ip.String()] = struct{}{}
	}
	return p
}

// DefaultPatterns returns the built-in lists.
func DefaultPatterns() *Patterns {
	p, err := parsePatterns(defaultPatternsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded patterns.yaml: %v", err))
	}
	return p
}

// LoadPatterns reads a YAML pattern file. An empty path yields the defaults.
func LoadPatterns(path string) (*Patterns, error) {
	if path == "" {
		return DefaultPatterns(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	p, err := parsePatterns(data)
	if err != nil {
		return nil, fmt.Errorf("parse patterns %s: %w", path, err)
	}
	log.Printf("[PATTERNS] loaded %d shorteners, %d malicious domains, %d malicious IPs from %s",
		len(p.shorteners), len(p.maliciousDomains), len(p.maliciousIPs), path)
	return p, nil
}

func parsePatterns(data []byte) (*Patterns, error) {
	var f patternsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Shorteners) == 0 {
		return nil, fmt.Errorf("no shorteners defined")
	}
	return NewPatterns(f.Shorteners, f.MaliciousDomains, f.MaliciousIPs), nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// IsShortenerHost reports whether host matches a known URL shortener.
func (p *Patterns) IsShortenerHost(host string) bool {
	return containsAny(strings.ToLower(host), p.shorteners)
}

// IsShortened applies the shortener check to a raw URL string.
func (p *Patterns) IsShortened(rawURL string) bool {
	return p.IsShortenerHost(ParseURL(rawURL).lexicalHost())
}

// IsMaliciousHost reports whether host contains a blocklisted domain fragment.
func (p *Patterns) IsMaliciousHost(host string) bool {
	return containsAny(strings.ToLower(host), p.maliciousDomains)
}

// IsMaliciousIP reports whether addr equals a blocklisted IP literal.
func (p *Patterns) IsMaliciousIP(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	_, ok := p.maliciousIPs[ip.String()]
	return ok
}

// IsShortened reports whether rawURL points at a known URL shortener.
func IsShortened(rawURL string, p *Patterns) bool {
	if p == nil {
		p = DefaultPatterns()
	}
	return p.IsShortened(rawURL)
}

func containsAny(s string, subs []string) bool {
	if s == "" {
		return false
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// lexicalHost is the host used by the shortener check. Scheme-less input such
// as "bit.ly/abc" has no parsed host, so the leading path segment stands in.
func (p ParsedURL) lexicalHost() string {
	if p.Host != "" || p.Invalid {
		return p.Host
	}
	rest := strings.TrimSpace(p.Raw)
	if i := strings.Index(rest, "//"); i >= 0 {
		rest = rest[i+2:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return strings.ToLower(rest)
}
