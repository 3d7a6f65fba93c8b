// Package batch drives domain lookups sequentially with a bounded,
// per-domain retry policy.
package batch

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	rdapclient "github.com/datum-labs/rdapexpiry"
	"github.com/datum-labs/rdapexpiry/expiry"
)

// DefaultMaxAttempts is the total number of attempts per domain.
const DefaultMaxAttempts = 3

// Resolver performs one lookup attempt. Both rdapclient.Client and
// rdapclient.WhoisResolver implement it.
type Resolver interface {
	Resolve(ctx context.Context, domain string) (*rdapclient.Record, error)
}

// Reporter receives Begin once per domain, then exactly one Report.
type Reporter interface {
	Begin(domain string)
	Report(o Outcome)
}

// DelegationProber answers whether a domain is delegated in the DNS.
type DelegationProber interface {
	Delegated(ctx context.Context, domain string) (bool, error)
}

// Driver walks a domain list one domain at a time.
type Driver struct {
	resolver    Resolver
	reporter    Reporter
	probe       DelegationProber
	maxAttempts int
	backoff     rdapclient.Backoff
	thresholds  expiry.Thresholds
	now         func() time.Time
	log         logrus.FieldLogger
	runID       string
}

type Option func(*Driver)

func WithReporter(r Reporter) Option { return func(d *Driver) { d.reporter = r } }

// WithMaxAttempts bounds attempts per domain; values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(d *Driver) {
		if n >= 1 {
			d.maxAttempts = n
		}
	}
}

// WithBackoff delays retries. The default retries immediately.
func WithBackoff(b rdapclient.Backoff) Option {
	return func(d *Driver) {
		if b != nil {
			d.backoff = b
		}
	}
}

func WithThresholds(th expiry.Thresholds) Option { return func(d *Driver) { d.thresholds = th } }

// WithDelegationProbe consults p for domains whose lookup failed.
func WithDelegationProbe(p DelegationProber) Option { return func(d *Driver) { d.probe = p } }

func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithRunID overrides the generated batch identifier used in logs.
func WithRunID(id string) Option { return func(d *Driver) { d.runID = id } }

// New builds a Driver around resolver.
func New(resolver Resolver, opts ...Option) (*Driver, error) {
	if resolver == nil {
		return nil, errors.New("batch: resolver is required")
	}
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	d := &Driver{
		resolver:    resolver,
		reporter:    Reporters{},
		maxAttempts: DefaultMaxAttempts,
		backoff:     rdapclient.NoBackoff(),
		thresholds:  expiry.DefaultThresholds(),
		now:         time.Now,
		log:         quiet,
		runID:       uuid.NewString(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithField("run_id", d.runID)
	return d, nil
}

// Run checks every domain in order. Each domain gets exactly one Begin and
// one Report, whatever happens to the others.
func (d *Driver) Run(ctx context.Context, domains []string) Summary {
	sum := Summary{RunID: d.runID, ByStatus: make(map[Status]int)}
	for _, domain := range domains {
		d.reporter.Begin(domain)
		out := d.check(ctx, domain)
		d.reporter.Report(out)

		sum.Total++
		sum.Attempts += out.Attempts
		sum.ByStatus[out.Status]++
	}
	d.log.WithFields(logrus.Fields{"domains": sum.Total, "attempts": sum.Attempts}).Debug("batch finished")
	return sum
}

// phase is the per-domain retry state: attempting(n), then exactly one of
// succeeded or gaveUp.
type phase int

const (
	attempting phase = iota
	succeeded
	gaveUp
)

func (d *Driver) check(ctx context.Context, domain string) Outcome {
	out := Outcome{Domain: domain}
	log := d.log.WithField("domain", domain)

	var rec *rdapclient.Record
	notFound := false
	state := attempting
	for state == attempting {
		out.Attempts++
		r, err := d.resolver.Resolve(ctx, domain)
		if err == nil {
			rec = r
			state = succeeded
			break
		}
		out.Errors = append(out.Errors, err)
		kind := rdapclient.KindOf(err)
		if kind == rdapclient.DomainNotFound {
			notFound = true
			state = succeeded
			break
		}

		log.WithFields(logrus.Fields{"attempt": out.Attempts, "kind": kind.String()}).WithError(err).Debug("lookup attempt failed")
		if out.Attempts >= d.maxAttempts {
			state = gaveUp
			break
		}
		if !d.wait(ctx, out.Attempts, err) {
			state = gaveUp
		}
	}

	out.CheckedAt = d.now()
	switch {
	case state == gaveUp:
		out.Status = LookupFailed
		out.Delegated = d.delegated(ctx, domain)
		log.WithFields(logrus.Fields{"attempts": out.Attempts, "kind": out.Kind().String()}).Warn("lookup failed")
	case notFound, rec == nil, !rec.Registered:
		out.Status = NotRegistered
		out.Record = rec
	case rec.Expiration == nil:
		out.Status = NoExpiration
		out.Record = rec
	default:
		out.Status = Registered
		out.Record = rec
		out.Remaining = expiry.Remaining(out.CheckedAt, *rec.Expiration)
		out.Tier = expiry.TierFor(out.Remaining, d.thresholds)
	}
	return out
}

// wait sleeps before the next attempt. It reports false when ctx ends first.
func (d *Driver) wait(ctx context.Context, attempt int, err error) bool {
	delay := d.backoff(attempt)
	var se *rdapclient.StatusError
	if errors.As(err, &se) && se.RetryAfter > delay && delay > 0 {
		delay = se.RetryAfter
	}
	if delay <= 0 {
		return true
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Driver) delegated(ctx context.Context, domain string) *bool {
	if d.probe == nil {
		return nil
	}
	ok, err := d.probe.Delegated(ctx, domain)
	if err != nil {
		d.log.WithField("domain", domain).WithError(err).Debug("delegation probe failed")
		return nil
	}
	return &ok
}

// Reporters fans every call out to each reporter in order.
type Reporters []Reporter

func (rs Reporters) Begin(domain string) {
	for _, r := range rs {
		r.Begin(domain)
	}
}

func (rs Reporters) Report(o Outcome) {
	for _, r := range rs {
		r.Report(o)
	}
}
