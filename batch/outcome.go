package batch

import (
	"time"

	rdapclient "github.com/datum-labs/rdapexpiry"
	"github.com/datum-labs/rdapexpiry/expiry"
)

// Status is the terminal result reported for one domain.
type Status int

const (
	// Registered with a known expiration instant.
	Registered Status = iota + 1
	// NoExpiration: registered, but the response carried no expiration.
	NoExpiration
	// NotRegistered covers DomainNotFound and lookups that answered
	// "not registered" directly.
	NotRegistered
	// LookupFailed: every attempt failed with a retryable error.
	LookupFailed
)

func (s Status) String() string {
	switch s {
	case Registered:
		return "registered"
	case NoExpiration:
		return "no-expiration"
	case NotRegistered:
		return "not-registered"
	case LookupFailed:
		return "lookup-failed"
	default:
		return "unknown"
	}
}

// Outcome is the single report produced for each requested domain.
type Outcome struct {
	Domain string
	Status Status
	Record *rdapclient.Record

	// Remaining and Tier are set only for Registered.
	Remaining time.Duration
	Tier      expiry.Tier

	Attempts int
	// Errors holds one classified error per failed attempt, in order.
	Errors []error
	// Delegated is the DNS probe answer for LookupFailed, nil when the
	// probe is off or could not answer.
	Delegated *bool
	CheckedAt time.Time
}

// Err returns the error of the last failed attempt, if any.
func (o Outcome) Err() error {
	if len(o.Errors) == 0 {
		return nil
	}
	return o.Errors[len(o.Errors)-1]
}

// Kind is the StatusKind of the last failed attempt, 0 when none failed.
func (o Outcome) Kind() rdapclient.StatusKind { return rdapclient.KindOf(o.Err()) }

// Summary counts terminal statuses over a batch.
type Summary struct {
	RunID    string
	Total    int
	Attempts int
	ByStatus map[Status]int
}
