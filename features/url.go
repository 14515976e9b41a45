package features

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ParsedURL is the lexical decomposition of a submitted URL. A zero value with
// Invalid set is a legal result for input that could not be parsed.
type ParsedURL struct {
	Raw     string
	Scheme  string
	Host    string // lowercased hostname, no port, userinfo or brackets
	Port    string // explicit port as written, "" when absent
	Path    string
	Invalid bool
}

// ParseURL splits raw into its parts without touching the network.
func ParseURL(raw string) ParsedURL {
	p := ParsedURL{Raw: raw}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		p.Invalid = true
		return p
	}

	p.Scheme = strings.ToLower(u.Scheme)
	p.Host = strings.ToLower(u.Hostname())
	p.Port = u.Port()
	p.Path = u.Path
	return p
}

// HasPort reports whether the URL carries an explicit port.
func (p ParsedURL) HasPort() bool { return p.Port != "" }

// PortNumber returns the explicit port and whether it is a usable port number.
func (p ParsedURL) PortNumber() (int, bool) {
	if p.Port == "" {
		return 0, false
	}
	n, err := strconv.Atoi(p.Port)
	if err != nil || n < 0 || n > 65535 {
		return 0, false
	}
	return n, true
}

// IsIPLiteral reports whether the host is an IPv4 or IPv6 address.
func (p ParsedURL) IsIPLiteral() bool {
	return p.Host != "" && net.ParseIP(p.Host) != nil
}

// QueryHost returns the host in the ASCII form used for DNS and WHOIS queries.
func (p ParsedURL) QueryHost() string {
	host := strings.TrimSuffix(p.Host, ".")
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		return strings.ToLower(ascii)
	}
	return host
}

// RegistrableDomain returns the eTLD+1 of the host, or the host itself when
// it has none (IP literals, single labels, unknown suffixes).
func (p ParsedURL) RegistrableDomain() string {
	host := p.QueryHost()
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil && d != "" {
		return d
	}
	return host
}

// refHost returns the host[:port] portion of a URL reference found in a page,
// lowercased. Relative and unparsable references have no host.
func refHost(ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
