package rdapclient

import "strings"

// RDAP response members (RFC 9083) that a domain expiry check reads.
// Unknown members are ignored by the decoder.

// Link is an RDAP link object.
type Link struct {
	Value string `json:"value,omitempty"`
	Rel   string `json:"rel,omitempty"`
	Href  string `json:"href,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Event is an RDAP event; eventDate is kept raw and parsed on demand.
type Event struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
	EventActor  string `json:"eventActor,omitempty"`
	Links       []Link `json:"links,omitempty"`
}

// Notice covers both notices and remarks.
type Notice struct {
	Title       string   `json:"title,omitempty"`
	Type        string   `json:"type,omitempty"`
	Description []string `json:"description,omitempty"`
	Links       []Link   `json:"links,omitempty"`
}

// Nameserver is the shallow form embedded in a domain response.
type Nameserver struct {
	ObjectClassName string `json:"objectClassName,omitempty"`
	LDHName         string `json:"ldhName,omitempty"`
}

// Domain is the RDAP domain object class.
type Domain struct {
	ObjectClassName string       `json:"objectClassName"`
	Handle          string       `json:"handle,omitempty"`
	LDHName         string       `json:"ldhName,omitempty"`
	UnicodeName     string       `json:"unicodeName,omitempty"`
	Status          []string     `json:"status,omitempty"`
	Events          []Event      `json:"events,omitempty"`
	Nameservers     []Nameserver `json:"nameservers,omitempty"`
	Links           []Link       `json:"links,omitempty"`
	Remarks         []Notice     `json:"remarks,omitempty"`
	Port43          string       `json:"port43,omitempty"`

	RDAPConformance []string `json:"rdapConformance,omitempty"`
	Notices         []Notice `json:"notices,omitempty"`
}

// ErrorResponse is the RFC 9083 section 6 error body some servers send with
// non-2xx statuses.
type ErrorResponse struct {
	ErrorCode   int      `json:"errorCode"`
	Title       string   `json:"title,omitempty"`
	Description []string `json:"description,omitempty"`
}

// Validate ensures the embedded objectClassName matches the expected value.
func (d *Domain) Validate() bool { return lower(d.ObjectClassName) == "domain" }

// FirstEvent returns the first event whose eventAction equals action,
// ignoring case.
func (d *Domain) FirstEvent(action string) (Event, bool) {
	for _, ev := range d.Events {
		if strings.EqualFold(ev.EventAction, action) {
			return ev, true
		}
	}
	return Event{}, false
}
