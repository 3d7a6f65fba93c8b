// Package report renders batch outcomes: an ANSI terminal listing, JSON,
// an XLSX workbook, and Prometheus metrics.
package report

import (
	"fmt"
	"io"

	"github.com/datum-labs/rdapexpiry/batch"
	"github.com/datum-labs/rdapexpiry/expiry"
)

// Indent precedes every status line.
const Indent = "    "

// Text prints "<domain>:" followed by one indented, colored status line.
type Text struct {
	w       io.Writer
	palette expiry.Palette
	full    bool
}

type TextOption func(*Text)

func WithPalette(p expiry.Palette) TextOption { return func(t *Text) { t.palette = p } }

// WithFull selects the full multi-unit duration instead of the largest unit.
func WithFull(full bool) TextOption { return func(t *Text) { t.full = full } }

func NewText(w io.Writer, opts ...TextOption) *Text {
	t := &Text{w: w, palette: expiry.DefaultPalette(), full: true}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Text) Begin(domain string) { fmt.Fprintf(t.w, "%s:\n", domain) }

func (t *Text) Report(o batch.Outcome) {
	fmt.Fprintln(t.w, Indent+StatusLine(o, t.palette, t.full))
}

// StatusLine is the human-readable verdict for one outcome.
func StatusLine(o batch.Outcome, p expiry.Palette, full bool) string {
	switch o.Status {
	case batch.Registered:
		human := p.Paint(o.Tier, expiry.Format(o.Remaining, full))
		if o.Remaining < 0 {
			return "Domain name has expired " + human + " ago"
		}
		return "Domain name will expire in " + human
	case batch.NoExpiration:
		return p.Paint(expiry.Critical, "Unable to obtain domain name expiration date")
	case batch.NotRegistered:
		return p.Paint(expiry.Normal, "Domain name not registered")
	default:
		msg := fmt.Sprintf("Lookup failed after %d %s (%s)", o.Attempts, expiry.Pluralize("attempt", int64(o.Attempts)), kindLabel(o))
		if o.Delegated != nil {
			if *o.Delegated {
				msg += " - delegated in DNS"
			} else {
				msg += " - not delegated in DNS"
			}
		}
		return p.Paint(expiry.Critical, msg)
	}
}

func kindLabel(o batch.Outcome) string {
	if k := o.Kind(); k != 0 {
		return k.String()
	}
	if err := o.Err(); err != nil {
		return err.Error()
	}
	return "unknown error"
}
