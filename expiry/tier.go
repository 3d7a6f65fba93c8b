// Package expiry turns a registration expiration instant into a severity
// tier and a human-readable duration.
package expiry

import "time"

// Tier is a severity bucket for the time left until expiration.
type Tier int

const (
	Normal Tier = iota
	Warning
	Critical
	Expired
)

func (t Tier) String() string {
	switch t {
	case Expired:
		return "expired"
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	default:
		return "normal"
	}
}

// Thresholds are the inclusive upper bounds of the Critical and Warning tiers.
type Thresholds struct {
	Critical time.Duration
	Warning  time.Duration
}

// DefaultThresholds is one week critical, four weeks warning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Critical: 604800 * time.Second,
		Warning:  2419200 * time.Second,
	}
}

// TierFor classifies a signed span. Negative spans are Expired; the rest
// compare whole seconds against th, most severe first.
func TierFor(d time.Duration, th Thresholds) Tier {
	if d < 0 {
		return Expired
	}
	secs := int64(d / time.Second)
	switch {
	case secs <= int64(th.Critical/time.Second):
		return Critical
	case secs <= int64(th.Warning/time.Second):
		return Warning
	default:
		return Normal
	}
}

// Remaining is the signed span from now until exp.
func Remaining(now, exp time.Time) time.Duration { return exp.Sub(now) }
