package rdapclient

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnexpectedObject indicates the RDAP response was not the expected object class.
type ErrUnexpectedObject string

func (e ErrUnexpectedObject) Error() string {
	return fmt.Sprintf("unexpected RDAP objectClassName, want %s", string(e))
}

// ErrBootstrapUnavailable wraps every failure to obtain bootstrap data.
var ErrBootstrapUnavailable = errors.New("rdap: bootstrap data unavailable")

// StatusKind is the closed set of ways a single domain lookup attempt can fail.
type StatusKind int

const (
	DomainNotFound StatusKind = iota + 1
	NoServersFound
	UnableToRetrieveListOfServers
	NetworkRequestGlitch
	BadServer
	CouldntParseData
	RdapProblem
)

var kindNames = map[StatusKind]string{
	DomainNotFound:                "domain not found",
	NoServersFound:                "no servers found",
	UnableToRetrieveListOfServers: "unable to retrieve list of servers",
	NetworkRequestGlitch:          "network request glitch",
	BadServer:                     "bad server",
	CouldntParseData:              "couldn't parse data",
	RdapProblem:                   "rdap problem",
}

func (k StatusKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("status kind %d", int(k))
}

// Retryable reports whether another attempt could change the answer.
// Only DomainNotFound is a definitive result.
func (k StatusKind) Retryable() bool { return k != DomainNotFound }

// Sentinels for errors.Is matching against a StatusError's kind.
var (
	ErrDomainNotFound                = &StatusError{Kind: DomainNotFound}
	ErrNoServersFound                = &StatusError{Kind: NoServersFound}
	ErrUnableToRetrieveListOfServers = &StatusError{Kind: UnableToRetrieveListOfServers}
	ErrNetworkRequestGlitch          = &StatusError{Kind: NetworkRequestGlitch}
	ErrBadServer                     = &StatusError{Kind: BadServer}
	ErrCouldntParseData              = &StatusError{Kind: CouldntParseData}
	ErrRdapProblem                   = &StatusError{Kind: RdapProblem}
)

// StatusError is the classified outcome of one failed lookup attempt.
type StatusError struct {
	Kind   StatusKind
	Domain string
	Server string
	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
	Err        error
}

func (e *StatusError) Error() string {
	msg := e.Kind.String()
	if e.Domain != "" {
		msg = e.Domain + ": " + msg
	}
	if e.Server != "" {
		msg += " (" + e.Server + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

// Is matches any StatusError of the same kind.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the StatusKind from err, or 0 when err is not classified.
func KindOf(err error) StatusKind {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func statusErr(kind StatusKind, domain, server string, err error) *StatusError {
	return &StatusError{Kind: kind, Domain: domain, Server: server, Err: err}
}
