package rdapclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Every failure path of a query attempt goes through one of these helpers,
// so each failed attempt carries exactly one StatusKind.

// classifyTransport covers everything that happens before a status line is
// read: refused connections, DNS, TLS, timeouts and cancelled contexts.
func classifyTransport(domain, server string, err error) *StatusError {
	return statusErr(NetworkRequestGlitch, domain, server, err)
}

// classifyStatus maps a non-2xx response. body may be nil; now anchors an
// HTTP-date Retry-After.
func classifyStatus(domain, server string, resp *http.Response, body []byte, now time.Time) *StatusError {
	cause := fmt.Errorf("HTTP %s", resp.Status)
	if er, ok := parseErrorResponse(body); ok {
		cause = fmt.Errorf("HTTP %s: %s", resp.Status, strings.TrimSpace(er.Title+" "+strings.Join(er.Description, " ")))
	}
	if resp.StatusCode == http.StatusNotFound {
		return statusErr(DomainNotFound, domain, server, cause)
	}
	se := statusErr(BadServer, domain, server, cause)
	se.RetryAfter = retryAfter(resp.Header, now)
	return se
}

// classifyBody maps a ParseDomain or record extraction failure.
func classifyBody(domain, server string, err error) *StatusError {
	if errors.Is(err, errProtocol) {
		return statusErr(RdapProblem, domain, server, err)
	}
	return statusErr(CouldntParseData, domain, server, err)
}
