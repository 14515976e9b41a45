package features

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the per-fetcher limits and probe settings of the engine.
type Config struct {
	HTTPTimeout    time.Duration
	WhoisTimeout   time.Duration
	DNSTimeout     time.Duration
	SearchTimeout  time.Duration
	ExtractTimeout time.Duration // upper bound for one whole extraction

	MaxBodyBytes int64
	MaxRedirects int
	UserAgent    string

	// DNSServer, when set (host:port), is queried instead of the system resolver.
	DNSServer string

	Search SearchConfig
}

// SearchConfig selects and configures the search-index probe.
type SearchConfig struct {
	Strategy       string // "api", "browser" or "" (disabled)
	URLTemplate    string // {query} is replaced with the escaped URL
	ResultPath     string // dotted path to the results array for "api"
	ResultSelector string // CSS selector of result links for "browser"
	APIKey         string
	APIKeyHeader   string
	RateLimit      float64 // requests per second, 0 = unlimited
	ChromePath     string
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		HTTPTimeout:    5 * time.Second,
		WhoisTimeout:   5 * time.Second,
		DNSTimeout:     3 * time.Second,
		SearchTimeout:  5 * time.Second,
		ExtractTimeout: 12 * time.Second,
		MaxBodyBytes:   5 * 1024 * 1024,
		MaxRedirects:   30,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Search: SearchConfig{
			APIKeyHeader: "X-Subscription-Token",
			RateLimit:    1,
		},
	}
}

// ConfigFromEnv overlays environment variables on DefaultConfig. Malformed
// values are logged and ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.HTTPTimeout = getDuration("FEATURE_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.WhoisTimeout = getDuration("FEATURE_WHOIS_TIMEOUT", cfg.WhoisTimeout)
	cfg.DNSTimeout = getDuration("FEATURE_DNS_TIMEOUT", cfg.DNSTimeout)
	cfg.SearchTimeout = getDuration("FEATURE_SEARCH_TIMEOUT", cfg.SearchTimeout)
	cfg.ExtractTimeout = getDuration("FEATURE_EXTRACT_TIMEOUT", cfg.ExtractTimeout)
	cfg.MaxBodyBytes = int64(getInt("FEATURE_MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.DNSServer = getenv("FEATURE_DNS_SERVER", cfg.DNSServer)

	cfg.Search.Strategy = getenv("SEARCH_STRATEGY", cfg.Search.Strategy)
	cfg.Search.URLTemplate = getenv("SEARCH_URL_TEMPLATE", cfg.Search.URLTemplate)
	cfg.Search.ResultPath = getenv("SEARCH_RESULT_PATH", cfg.Search.ResultPath)
	cfg.Search.ResultSelector = getenv("SEARCH_RESULT_SELECTOR", cfg.Search.ResultSelector)
	cfg.Search.APIKey = getenv("SEARCH_API_KEY", cfg.Search.APIKey)
	cfg.Search.APIKeyHeader = getenv("SEARCH_API_KEY_HEADER", cfg.Search.APIKeyHeader)
	cfg.Search.ChromePath = getenv("CHROME_PATH", cfg.Search.ChromePath)
	if v := os.Getenv("SEARCH_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Search.RateLimit = f
		} else {
			log.Printf("[CONFIG] ignoring SEARCH_RATE_LIMIT=%q", v)
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[CONFIG] ignoring %s=%q", key, v)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[CONFIG] ignoring %s=%q", key, v)
		return def
	}
	return n
}
