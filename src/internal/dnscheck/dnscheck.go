// Package dnscheck verifies that DNS resolution works through the VPN
// provider's resolver after a tunnel comes up.
package dnscheck

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
	"github.com/miekg/dns"
)

const (
	defaultDNSPort = "53"

	// Shorter than the caller's context timeout to avoid races.
	clientTimeout = 3 * time.Second

	// checkDomain is a name that must resolve for any working resolver.
	checkDomain = "privateinternetaccess.com."
)

// Checker performs DNS lookups against a specific resolver.
type Checker struct {
	address string
	client  *dns.Client
}

// NewChecker creates a checker for the given resolver address.
// A port is appended when the address does not carry one.
func NewChecker(resolver string) (*Checker, error) {
	host := resolver
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, defaultDNSPort)
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		return nil, errors.NewNetworkError(
			fmt.Sprintf("invalid resolver address %q", resolver), err)
	}

	return &Checker{
		address: host,
		client: &dns.Client{
			Net:     "udp",
			Timeout: clientTimeout,
		},
	}, nil
}

// Resolve queries the resolver for A records of the given name.
func (c *Checker) Resolve(ctx context.Context, name string) ([]net.IP, error) {
	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(name), dns.TypeA)
	req.RecursionDesired = true

	log.Debugf("[%04x] querying %s for %s", req.Id, c.address, name)

	resp, _, err := c.client.ExchangeContext(ctx, req, c.address)
	if err != nil {
		return nil, errors.NewNetworkError(
			fmt.Sprintf("DNS query to %s failed", c.address), err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, errors.NewNetworkError(
			fmt.Sprintf("DNS query to %s returned %s", c.address, dns.RcodeToString[resp.Rcode]), nil)
	}

	var ips []net.IP
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			ips = append(ips, a.A)
		}
	}
	if len(ips) == 0 {
		return nil, errors.NewNetworkError(
			fmt.Sprintf("DNS query to %s returned no A records", c.address), nil)
	}
	return ips, nil
}

// Verify performs a canary lookup to confirm the resolver is reachable
// and answering through the tunnel.
func (c *Checker) Verify(ctx context.Context) error {
	ips, err := c.Resolve(ctx, checkDomain)
	if err != nil {
		return err
	}
	log.Debugf("resolver %s answered %s with %v", c.address, checkDomain, ips)
	return nil
}
