package rdapclient

import (
	"fmt"
	"strings"
	"time"
)

// Record is the result of a successful lookup.
type Record struct {
	Domain     string
	Registered bool
	// Expiration is nil when the response carries no expiration event or
	// the domain is not registered.
	Expiration *time.Time
	Server     string
	Source     string
}

const (
	SourceRDAP  = "rdap"
	SourceWHOIS = "whois"
)

var eventDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
}

func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable eventDate %q", s)
}

// recordFromDomain extracts the registration flag and the first
// "expiration" event from a validated domain object.
func recordFromDomain(d *Domain, server string) (*Record, error) {
	rec := &Record{Domain: d.LDHName, Registered: true, Server: server, Source: SourceRDAP}
	ev, ok := d.FirstEvent("expiration")
	if !ok {
		return rec, nil
	}
	if ev.EventDate == "" {
		return nil, fmt.Errorf("%w: expiration event without eventDate", errProtocol)
	}
	t, err := parseEventDate(ev.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errProtocol, err)
	}
	rec.Expiration = &t
	return rec, nil
}
