package rdapclient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/sirupsen/logrus"
)

// WhoisQuerier is the part of *whois.Client the WHOIS transport uses.
type WhoisQuerier interface {
	Whois(domain string, servers ...string) (string, error)
}

// WhoisResolver answers the same question as Client.Resolve over port 43.
// Its failures use the same StatusKind taxonomy.
type WhoisResolver struct {
	q       WhoisQuerier
	server  string
	timeout time.Duration
	log     logrus.FieldLogger
}

type WhoisOption func(*WhoisResolver)

func WithWhoisQuerier(q WhoisQuerier) WhoisOption { return func(w *WhoisResolver) { w.q = q } }

// WithWhoisServer pins the WHOIS server instead of following IANA referrals.
func WithWhoisServer(s string) WhoisOption { return func(w *WhoisResolver) { w.server = s } }

func WithWhoisTimeout(d time.Duration) WhoisOption {
	return func(w *WhoisResolver) { w.timeout = d }
}

func WithWhoisLogger(l logrus.FieldLogger) WhoisOption {
	return func(w *WhoisResolver) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWhoisResolver returns a resolver backed by github.com/likexian/whois.
func NewWhoisResolver(opts ...WhoisOption) *WhoisResolver {
	w := &WhoisResolver{timeout: 10 * time.Second, log: discardLogger()}
	for _, opt := range opts {
		opt(w)
	}
	if w.q == nil {
		w.q = whois.NewClient().SetTimeout(w.timeout)
	}
	return w
}

// Resolve performs one WHOIS query and parses it with whois-parser.
func (w *WhoisResolver) Resolve(ctx context.Context, domain string) (*Record, error) {
	name := queryName(domain)
	// Empty unless pinned: the library follows referrals without telling
	// us which server answered.
	server := w.server

	raw, err := w.query(ctx, name)
	if err != nil {
		if containsAny(lower(err.Error()), "no whois server", "whois server not found") {
			return nil, statusErr(NoServersFound, name, server, err)
		}
		return nil, classifyTransport(name, server, err)
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return w.classifyParse(name, server, err)
	}
	if info.Domain == nil {
		return nil, statusErr(RdapProblem, name, server, errors.New("whois response has no domain section"))
	}

	rec := &Record{Domain: name, Registered: true, Server: server, Source: SourceWHOIS}
	if info.Domain.ExpirationDate != "" {
		if t, err := ParseWhoisDate(info.Domain.ExpirationDate); err == nil {
			rec.Expiration = &t
		} else {
			w.log.WithFields(logrus.Fields{"domain": name, "raw": info.Domain.ExpirationDate}).Debug("whois expiration date not understood")
		}
	}
	return rec, nil
}

func (w *WhoisResolver) classifyParse(name, server string, err error) (*Record, error) {
	switch {
	case errors.Is(err, whoisparser.ErrNotFoundDomain):
		return nil, statusErr(DomainNotFound, name, server, err)
	case errors.Is(err, whoisparser.ErrReservedDomain),
		errors.Is(err, whoisparser.ErrPremiumDomain),
		errors.Is(err, whoisparser.ErrBlockedDomain):
		w.log.WithFields(logrus.Fields{"domain": name, "reason": err.Error()}).Debug("domain is not registrable")
		return &Record{Domain: name, Registered: false, Server: server, Source: SourceWHOIS}, nil
	case errors.Is(err, whoisparser.ErrDomainLimitExceed):
		return nil, statusErr(BadServer, name, server, err)
	default:
		return nil, statusErr(CouldntParseData, name, server, err)
	}
}

// query runs the blocking WHOIS call in a goroutine so ctx can abandon it.
func (w *WhoisResolver) query(ctx context.Context, name string) (string, error) {
	type result struct {
		raw string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		var servers []string
		if w.server != "" {
			servers = append(servers, w.server)
		}
		raw, err := w.q.Whois(name, servers...)
		ch <- result{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.raw, r.err
	}
}

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"02-Jan-2006",
	"02.01.2006",
}

// ParseWhoisDate parses the expiration formats registries commonly use.
func ParseWhoisDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return parseEventDate(s)
}
