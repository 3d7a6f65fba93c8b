package rdapclient

import (
	"context"
	"strings"

	"golang.org/x/net/idna"
)

// FindServers returns the candidate RDAP bases for domain using the longest
// matching suffix. ok is false when no entry covers the domain at all; an
// entry with no URLs returns ok with an empty slice.
func (r *Registry) FindServers(domain string) ([]string, bool) {
	if r == nil {
		return nil, false
	}
	labels := strings.Split(trimDotLower(strings.TrimSuffix(domain, ".")), ".")
	// Longest match first; the full name itself is never a suffix.
	for i := 1; i < len(labels); i++ {
		if servers, ok := r.services[strings.Join(labels[i:], ".")]; ok {
			return servers, true
		}
	}
	if len(labels) == 1 && labels[0] != "" {
		servers, ok := r.services[labels[0]]
		return servers, ok
	}
	return nil, false
}

// serversFor resolves the registry and the candidate list for one domain,
// classifying the two ways delegation data can be missing.
func (c *Client) serversFor(ctx context.Context, domain string) ([]string, error) {
	reg, err := c.LoadRegistry(ctx)
	if err != nil {
		return nil, statusErr(UnableToRetrieveListOfServers, domain, "", err)
	}
	servers, ok := reg.FindServers(domain)
	if !ok {
		return nil, statusErr(UnableToRetrieveListOfServers, domain, "", nil)
	}
	if len(servers) == 0 {
		return nil, statusErr(NoServersFound, domain, "", nil)
	}
	return servers, nil
}

// queryName is the on-the-wire form of a domain: trimmed, without the root
// dot, and IDNA-encoded when possible.
func queryName(domain string) string {
	d := strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if a, err := idna.Lookup.ToASCII(d); err == nil && a != "" {
		return a
	}
	return lower(d)
}
