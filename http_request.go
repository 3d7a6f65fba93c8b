package rdapclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
)

// getJSON performs exactly one GET against an RDAP server and returns the
// body of a 2xx response. Every failure comes back as a *StatusError.
func (c *Client) getJSON(ctx context.Context, domain, server, u string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.baseTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, statusErr(BadServer, domain, server, err)
	}
	req.Header.Set("Accept", "application/rdap+json, application/json;q=0.8, */*;q=0.1")
	req.Header.Set("User-Agent", c.ua)
	copyHeaders(req.Header, c.headerExtra)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, classifyTransport(domain, server, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, classifyTransport(domain, server, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(domain, server, resp, b, c.now())
	}
	return b, nil
}

// isTimeout reports whether err is a deadline or net timeout, for logging.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isTransient reports whether a transport error looks like a glitch that
// usually clears on its own.
func isTransient(err error) bool {
	if isTimeout(err) || temporary(err) {
		return true
	}
	return containsAny(lower(err.Error()), "connection reset", "broken pipe", "unexpected eof", "connection refused")
}
