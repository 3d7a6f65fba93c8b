package rdapclient

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Resolve looks up one domain: bootstrap candidates, one query to
// servers[0], classification. Failures are always *StatusError values.
// A nil error with Registered == false never happens over RDAP; an
// unregistered domain is DomainNotFound.
func (c *Client) Resolve(ctx context.Context, domain string) (*Record, error) {
	name := queryName(domain)
	servers, err := c.serversFor(ctx, name)
	if err != nil {
		return nil, err
	}
	candidates := servers[:1]
	if c.serverFallback {
		candidates = servers
	}

	var last error
	for _, base := range candidates {
		rec, err := c.queryServer(ctx, name, base)
		if err == nil {
			return rec, nil
		}
		last = err
		if !KindOf(err).Retryable() {
			break
		}
	}
	return nil, last
}

func (c *Client) queryServer(ctx context.Context, name, base string) (*Record, error) {
	d, server, err := c.fetchDomain(ctx, name, base)
	if err != nil {
		return nil, err
	}
	rec, err := recordFromDomain(d, server)
	if err != nil {
		return nil, classifyBody(name, server, err)
	}
	if rec.Domain == "" {
		rec.Domain = name
	}
	return rec, nil
}

func (c *Client) fetchDomain(ctx context.Context, name, base string) (*Domain, string, error) {
	u, err := joinURL(base, "domain", name)
	if err != nil {
		return nil, base, statusErr(BadServer, name, base, err)
	}
	body, err := c.getJSON(ctx, name, base, u)
	if err != nil {
		c.logAttempt(name, base, err)
		return nil, base, err
	}
	d, err := ParseDomain(body)
	if err != nil {
		se := classifyBody(name, base, err)
		c.logAttempt(name, base, se)
		return nil, base, se
	}
	return d, base, nil
}

func (c *Client) logAttempt(name, server string, err error) {
	fields := logrus.Fields{"domain": name, "server": server, "kind": KindOf(err).String()}
	if KindOf(err) == NetworkRequestGlitch {
		fields["timeout"] = isTimeout(err)
		fields["transient"] = isTransient(err)
	}
	c.log.WithFields(fields).Debug("rdap query failed")
}
