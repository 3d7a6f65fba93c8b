// Package dnsprobe asks a recursive resolver whether a domain is delegated.
// The batch driver uses it to annotate lookups that failed on every attempt.
package dnsprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

// FallbackServer is used when no resolver can be read from resolv.conf.
const FallbackServer = "1.1.1.1:53"

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 3 * time.Second

// ErrUnanswered is returned when the resolver answers with anything other
// than NOERROR or NXDOMAIN.
var ErrUnanswered = errors.New("dnsprobe: resolver gave no usable answer")

// Prober sends one NS query per domain.
type Prober struct {
	client  *dns.Client
	server  string
	timeout time.Duration
	log     logrus.FieldLogger
}

type Option func(*Prober)

// WithServer sets the resolver; a missing port defaults to 53.
func WithServer(addr string) Option {
	return func(p *Prober) {
		if addr = strings.TrimSpace(addr); addr != "" {
			p.server = withPort(addr)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Prober) {
		if l != nil {
			p.log = l
		}
	}
}

// New builds a Prober, reading the first nameserver of /etc/resolv.conf
// unless WithServer is given.
func New(opts ...Option) *Prober {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	p := &Prober{
		timeout: DefaultTimeout,
		log:     quiet,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.server == "" {
		p.server = systemResolver("/etc/resolv.conf")
	}
	p.client = &dns.Client{Net: "udp", Timeout: p.timeout}
	return p
}

// Server is the resolver address in use.
func (p *Prober) Server() string { return p.server }

// Delegated reports true when the resolver returns NS records for domain,
// false on NXDOMAIN or an empty NOERROR answer.
func (p *Prober) Delegated(ctx context.Context, domain string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(strings.TrimSuffix(strings.TrimSpace(domain), ".")), dns.TypeNS)
	m.RecursionDesired = true

	resp, _, err := p.client.ExchangeContext(ctx, m, p.server)
	if err != nil {
		return false, fmt.Errorf("dnsprobe: query %s via %s: %w", domain, p.server, err)
	}

	switch resp.Rcode {
	case dns.RcodeNameError:
		p.log.WithField("domain", domain).Debug("dns: NXDOMAIN")
		return false, nil
	case dns.RcodeSuccess:
	default:
		return false, fmt.Errorf("%w: %s for %s", ErrUnanswered, dns.RcodeToString[resp.Rcode], domain)
	}

	for _, rr := range resp.Answer {
		if _, ok := rr.(*dns.NS); ok {
			return true, nil
		}
	}
	// Some resolvers answer a delegation with the NS set in authority.
	for _, rr := range resp.Ns {
		if ns, ok := rr.(*dns.NS); ok && strings.EqualFold(ns.Hdr.Name, m.Question[0].Name) {
			return true, nil
		}
	}
	return false, nil
}

func systemResolver(path string) string {
	conf, err := dns.ClientConfigFromFile(path)
	if err != nil || len(conf.Servers) == 0 {
		return FallbackServer
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

func withPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(strings.Trim(addr, "[]"), "53")
}
