package features

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"
)

// ErrNoAddress is returned when a lookup succeeds without any address.
var ErrNoAddress = errors.New("no address")

// DNSRecord holds the addresses a host resolved to.
type DNSRecord struct {
	Host  string
	Addrs []string
}

// Primary returns the first IPv4 address, or the first address of any family.
func (d DNSRecord) Primary() string {
	for _, a := range d.Addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a
		}
	}
	if len(d.Addrs) > 0 {
		return d.Addrs[0]
	}
	return ""
}

// HostResolver is satisfied by *net.Resolver.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// AddressLookup resolves the host of a URL.
type AddressLookup interface {
	Fetch(ctx context.Context, u ParsedURL) Result[DNSRecord]
}

// DNSResolver performs forward resolution of a URL's host.
type DNSResolver struct {
	resolver HostResolver
}

// NewDNSResolver uses the system resolver, or cfg.DNSServer over UDP when set.
func NewDNSResolver(cfg Config) *DNSResolver {
	r := net.DefaultResolver
	if cfg.DNSServer != "" {
		server := cfg.DNSServer
		dialTimeout := cfg.DNSTimeout
		if dialTimeout <= 0 {
			dialTimeout = 2 * time.Second
		}
		r = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				d := net.Dialer{Timeout: dialTimeout}
				return d.DialContext(ctx, "udp", server)
			},
		}
	}
	return &DNSResolver{resolver: r}
}

// NewDNSResolverWith wraps an existing resolver.
func NewDNSResolverWith(r HostResolver) *DNSResolver {
	return &DNSResolver{resolver: r}
}

// Fetch resolves the host; IP literals resolve to themselves.
func (d *DNSResolver) Fetch(ctx context.Context, u ParsedURL) Result[DNSRecord] {
	host := u.QueryHost()
	if host == "" {
		return Unavailable[DNSRecord]("no host")
	}
	if ip := net.ParseIP(host); ip != nil {
		return Available(DNSRecord{Host: host, Addrs: []string{ip.String()}})
	}

	addrs, err := d.resolver.LookupHost(ctx, host)
	if err == nil && len(addrs) == 0 {
		err = ErrNoAddress
	}
	if err != nil {
		log.Printf("[DNS] could not resolve %s: %v", host, err)
		return Unavailable[DNSRecord](fmt.Sprintf("lookup %s: %v", host, err))
	}
	return Available(DNSRecord{Host: host, Addrs: addrs})
}
