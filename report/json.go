package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/datum-labs/rdapexpiry/batch"
	"github.com/datum-labs/rdapexpiry/expiry"
)

// Entry is the JSON form of an outcome.
type Entry struct {
	Domain           string     `json:"domain"`
	Status           string     `json:"status"`
	Expiration       *time.Time `json:"expiration,omitempty"`
	RemainingSeconds *int64     `json:"remaining_seconds,omitempty"`
	Tier             string     `json:"tier,omitempty"`
	Human            string     `json:"human"`
	Attempts         int        `json:"attempts"`
	Error            string     `json:"error,omitempty"`
	ErrorKind        string     `json:"error_kind,omitempty"`
	Source           string     `json:"source,omitempty"`
	Server           string     `json:"server,omitempty"`
	Delegated        *bool      `json:"delegated,omitempty"`
	CheckedAt        time.Time  `json:"checked_at"`
}

// NewEntry flattens an outcome; human is the uncolored status line.
func NewEntry(o batch.Outcome, full bool) Entry {
	e := Entry{
		Domain:    o.Domain,
		Status:    o.Status.String(),
		Human:     StatusLine(o, expiry.NoColor(), full),
		Attempts:  o.Attempts,
		Delegated: o.Delegated,
		CheckedAt: o.CheckedAt,
	}
	if o.Record != nil {
		e.Expiration = o.Record.Expiration
		e.Source = o.Record.Source
		e.Server = o.Record.Server
	}
	if o.Status == batch.Registered {
		secs := int64(o.Remaining / time.Second)
		e.RemainingSeconds = &secs
		e.Tier = o.Tier.String()
	}
	if o.Status == batch.LookupFailed {
		if err := o.Err(); err != nil {
			e.Error = err.Error()
		}
		if k := o.Kind(); k != 0 {
			e.ErrorKind = k.String()
		}
	}
	return e
}

// JSON buffers entries and writes them as one indented array on Flush.
type JSON struct {
	w       io.Writer
	full    bool
	entries []Entry
}

func NewJSON(w io.Writer, full bool) *JSON { return &JSON{w: w, full: full, entries: []Entry{}} }

func (j *JSON) Begin(string) {}

func (j *JSON) Report(o batch.Outcome) { j.entries = append(j.entries, NewEntry(o, j.full)) }

func (j *JSON) Flush() error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.entries)
}
