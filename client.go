package rdapclient

import (
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Doer is the minimal http.Client interface we depend on (handy for tests/mocks).
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// DefaultBootstrapURL is the IANA DNS bootstrap document.
const DefaultBootstrapURL = "https://data.iana.org/rdap/dns.json"

// bootstrapTTL applies when the bootstrap response has no caching headers.
const bootstrapTTL = 6 * time.Hour

// Client resolves domain registration status over RDAP. It is safe for
// concurrent use; the batch driver uses it from a single goroutine.
type Client struct {
	// HTTP / defaults
	hc          Doer
	ua          string
	baseTimeout time.Duration
	headerExtra http.Header

	// bootstrap
	bootstrapURL string
	registry     *Registry
	bootCache    *ttlCache[*Registry] // bootstrap URL -> parsed registry

	// behavior
	serverFallback bool
	log            logrus.FieldLogger
	now            func() time.Time
}

// New returns a ready Client with good defaults.
func New(opts ...Option) *Client {
	c := &Client{
		hc:           defaultHTTPClient(),
		ua:           "rdapexpiry/0.1 (+https://github.com/datum-labs/rdapexpiry)",
		baseTimeout:  10 * time.Second,
		headerExtra:  make(http.Header),
		bootstrapURL: DefaultBootstrapURL,
		bootCache:    newTTLCache[*Registry](bootstrapTTL, 4),
		log:          discardLogger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultHTTPClient() *http.Client { return &http.Client{Timeout: 15 * time.Second} }

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
