package features

import "testing"

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw     string
		scheme  string
		host    string
		port    string
		path    string
		invalid bool
	}{
		{"https://Example.COM:8443/path?q=1", "https", "example.com", "8443", "/path", false},
		{"http://user:pw@login.example.com/", "http", "login.example.com", "", "/", false},
		{"http://[2001:db8::1]:80/x", "http", "2001:db8::1", "80", "/x", false},
		{"  https://example.com  ", "https", "example.com", "", "", false},
		{"example.com/login", "", "", "", "example.com/login", false},
		{"://missing-scheme", "", "", "", "", true},
		{"http://example.com/%zz", "", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p := ParseURL(tt.raw)
			if p.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", p.Raw, tt.raw)
			}
			if p.Invalid != tt.invalid {
				t.Fatalf("Invalid = %v, want %v", p.Invalid, tt.invalid)
			}
			if p.Scheme != tt.scheme || p.Host != tt.host || p.Port != tt.port || p.Path != tt.path {
				t.Errorf("got scheme=%q host=%q port=%q path=%q, want %q %q %q %q",
					p.Scheme, p.Host, p.Port, p.Path, tt.scheme, tt.host, tt.port, tt.path)
			}
		})
	}
}

func TestPortNumber(t *testing.T) {
	tests := []struct {
		raw  string
		port int
		ok   bool
	}{
		{"http://example.com", 0, false},
		{"http://example.com:8080/", 8080, true},
		{"https://example.com:443/", 443, true},
		{"http://example.com:99999/", 0, false},
	}
	for _, tt := range tests {
		port, ok := ParseURL(tt.raw).PortNumber()
		if port != tt.port || ok != tt.ok {
			t.Errorf("%s: PortNumber() = %d, %v; want %d, %v", tt.raw, port, ok, tt.port, tt.ok)
		}
	}
}

func TestIsIPLiteral(t *testing.T) {
	tests := map[string]bool{
		"http://192.168.0.1/login":  true,
		"http://[2001:db8::1]/":     true,
		"https://example.com/":      false,
		"https://1.2.3.example.com": false,
		"not a url":                 false,
	}
	for raw, want := range tests {
		if got := ParseURL(raw).IsIPLiteral(); got != want {
			t.Errorf("%s: IsIPLiteral() = %v, want %v", raw, got, want)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://login.accounts.example.co.uk/", "example.co.uk"},
		{"https://www.example.com/", "example.com"},
		{"https://EXAMPLE.com./", "example.com"},
		{"http://192.168.0.1/", "192.168.0.1"},
		{"http://bücher.example/", "xn--bcher-kva.example"},
		{"/relative/only", ""},
	}
	for _, tt := range tests {
		if got := ParseURL(tt.raw).RegistrableDomain(); got != tt.want {
			t.Errorf("%s: RegistrableDomain() = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestQueryHost(t *testing.T) {
	if got := ParseURL("http://Bücher.example.com/").QueryHost(); got != "xn--bcher-kva.example.com" {
		t.Errorf("QueryHost() = %q", got)
	}
	if got := ParseURL("not-a-host").QueryHost(); got != "" {
		t.Errorf("QueryHost() of path-only input = %q, want empty", got)
	}
}

func TestRefHost(t *testing.T) {
	tests := map[string]string{
		"//cdn.other.com/x.js":     "cdn.other.com",
		"/img/a.png":               "",
		"HTTP://Evil.COM:8080/x":   "evil.com:8080",
		"#top":                     "",
		"javascript:void(0)":       "",
		"https://example.com/page": "example.com",
	}
	for ref, want := range tests {
		if got := refHost(ref); got != want {
			t.Errorf("refHost(%q) = %q, want %q", ref, got, want)
		}
	}
}
