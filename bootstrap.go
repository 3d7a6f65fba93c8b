package rdapclient

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

//go:embed bootstrap/dns.json
var embeddedDNSBootstrap []byte

// Registry maps domain suffixes to ordered RDAP base URLs, as published in
// the IANA DNS bootstrap file (RFC 7484).
type Registry struct {
	services    map[string][]string
	Publication time.Time
	Description string
}

type bootstrapServices struct {
	Description string  `json:"description"`
	Publication string  `json:"publication"`
	Services    [][]any `json:"services"`
}

// ParseRegistry decodes a DNS bootstrap document. A service entry with an
// empty URL list is kept so lookups can tell it apart from a missing suffix.
func ParseRegistry(r io.Reader) (*Registry, error) {
	var bs bootstrapServices
	if err := json.NewDecoder(r).Decode(&bs); err != nil {
		return nil, fmt.Errorf("%w: parse bootstrap: %v", ErrBootstrapUnavailable, err)
	}
	reg := &Registry{
		services:    make(map[string][]string),
		Description: bs.Description,
	}
	if t, err := time.Parse(time.RFC3339, bs.Publication); err == nil {
		reg.Publication = t
	}
	for _, svc := range bs.Services {
		if len(svc) != 2 {
			continue
		}
		suffixes := toStringSlice(svc[0])
		urls := toStringSlice(svc[1])
		bases := make([]string, 0, len(urls))
		for _, u := range urls {
			bases = append(bases, strings.TrimRight(u, "/"))
		}
		for _, s := range suffixes {
			reg.services[trimDotLower(s)] = bases
		}
	}
	return reg, nil
}

// EmbeddedRegistry returns the bootstrap snapshot compiled into the binary.
func EmbeddedRegistry() (*Registry, error) {
	return ParseRegistry(bytes.NewReader(embeddedDNSBootstrap))
}

// Len is the number of suffixes the registry knows about.
func (r *Registry) Len() int { return len(r.services) }

// LoadRegistry returns the bootstrap registry, fetching the IANA document
// when the in-process copy is missing or stale. A registry installed with
// WithRegistry is returned as is.
func (c *Client) LoadRegistry(ctx context.Context) (*Registry, error) {
	if c.registry != nil {
		return c.registry, nil
	}
	if reg, ok := c.bootCache.Get(c.bootstrapURL); ok {
		return reg, nil
	}
	return c.fetchBootstrap(ctx)
}

// RefreshBootstrap forces a re-fetch of the IANA DNS bootstrap right now.
func (c *Client) RefreshBootstrap(ctx context.Context) error {
	_, err := c.fetchBootstrap(ctx)
	return err
}

func (c *Client) fetchBootstrap(ctx context.Context) (*Registry, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.baseTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.bootstrapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBootstrapUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	copyHeaders(req.Header, c.headerExtra)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBootstrapUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: bootstrap fetch failed: %s", ErrBootstrapUnavailable, resp.Status)
	}
	reg, err := ParseRegistry(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, err
	}
	ttl := expiryFromHeaders(resp.Header, bootstrapTTL, c.now())
	c.bootCache.SetFor(c.bootstrapURL, reg, ttl)
	c.log.WithField("suffixes", reg.Len()).WithField("url", c.bootstrapURL).Debug("bootstrap registry loaded")
	return reg, nil
}
