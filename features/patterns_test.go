package features

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsShortened(t *testing.T) {
	p := DefaultPatterns()
	tests := []struct {
		url  string
		want bool
	}{
		{"https://bit.ly/3abcXYZ", true},
		{"http://tinyurl.com/y6abc", true},
		{"bit.ly/abc", true},
		{"https://BIT.LY/abc", true},
		{"https://example.com/", false},
		{"https://example.com/?next=bit.ly", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := p.IsShortened(tt.url); got != tt.want {
				t.Errorf("IsShortened(%q) = %v, want %v", tt.url, got, tt.want)
			}
			if got := IsShortened(tt.url, nil); got != tt.want {
				t.Errorf("package IsShortened(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// Shortener patterns match as host substrings, so hosts that merely contain
// "t.co" are flagged too. The classifier was trained on these scores; keep
// the substring semantics.
func TestShortenerSubstringMatch(t *testing.T) {
	p := DefaultPatterns()
	for _, host := range []string{"microsoft.com", "www.target.com", "walmart.com"} {
		t.Run(host, func(t *testing.T) {
			if !p.IsShortenerHost(host) {
				t.Errorf("IsShortenerHost(%q) = false, want true", host)
			}
			a := bare("https://" + host + "/")
			if got := ShortURL(a); got != Suspicious {
				t.Errorf("ShortURL = %d, want %d", got, Suspicious)
			}
		})
	}
}

func TestMaliciousPatterns(t *testing.T) {
	p := DefaultPatterns()

	if !p.IsMaliciousHost("files.at.ua") {
		t.Errorf("expected at.ua subdomain to be malicious")
	}
	if p.IsMaliciousHost("example.com") {
		t.Errorf("example.com flagged as malicious")
	}
	if p.IsMaliciousHost("") {
		t.Errorf("empty host flagged as malicious")
	}

	if !p.IsMaliciousIP("146.112.61.108") {
		t.Errorf("expected blocklisted IP to match")
	}
	for _, addr := range []string{"146.112.61.1", "8.8.8.8", "146.112.61.1080", "nonsense"} {
		if p.IsMaliciousIP(addr) {
			t.Errorf("IsMaliciousIP(%q) = true, want false", addr)
		}
	}
}

func TestLoadPatterns(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		p, err := LoadPatterns("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.IsShortenerHost("goo.gl") {
			t.Errorf("defaults missing goo.gl")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "patterns.yaml")
		data := "shorteners:\n  - Sho.rt\n  - sho.rt\nmalicious_domains:\n  - bad.example\nmalicious_ips:\n  - 10.0.0.66\n  - not-an-ip\n"
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}

		p, err := LoadPatterns(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.shorteners) != 1 {
			t.Errorf("expected duplicate shorteners to collapse, got %v", p.shorteners)
		}
		if !p.IsShortened("https://sho.rt/x") || p.IsShortened("https://bit.ly/x") {
			t.Errorf("file shorteners not applied")
		}
		if !p.IsMaliciousHost("www.bad.example") || !p.IsMaliciousIP("10.0.0.66") {
			t.Errorf("file blocklists not applied")
		}
		if len(p.maliciousIPs) != 1 {
			t.Errorf("expected invalid IP to be skipped, got %d entries", len(p.maliciousIPs))
		}
	})

	t.Run("no shorteners", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "patterns.yaml")
		if err := os.WriteFile(path, []byte("malicious_domains: [x.example]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadPatterns(path); err == nil {
			t.Fatalf("expected error for file without shorteners")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadPatterns(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}
