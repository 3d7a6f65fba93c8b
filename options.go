package rdapclient

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Option func(*Client)

func WithHTTPDoer(d Doer) Option         { return func(c *Client) { c.hc = d } }
func WithUserAgent(ua string) Option     { return func(c *Client) { c.ua = ua } }
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.baseTimeout = d } }
func WithBootstrapURL(u string) Option   { return func(c *Client) { c.bootstrapURL = u } }
func WithHeader(k, v string) Option      { return func(c *Client) { c.headerExtra.Add(k, v) } }

// WithRegistry pins the bootstrap registry (for example the embedded
// snapshot); the client then never fetches bootstrap data.
func WithRegistry(r *Registry) Option { return func(c *Client) { c.registry = r } }

// WithServerFallback makes one Resolve call walk the remaining bootstrap
// candidates when the first fails with a retryable error. Off by default:
// only servers[0] is queried.
func WithServerFallback(on bool) Option { return func(c *Client) { c.serverFallback = on } }

// WithLogger sets the logger for debug diagnostics. Nil is ignored.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides time.Now, used for cache freshness.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
			c.bootCache.now = now
		}
	}
}
