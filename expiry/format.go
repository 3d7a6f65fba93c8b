package expiry

import (
	"strconv"
	"strings"
	"time"
)

type unit struct {
	name string
	size time.Duration
}

var units = []unit{
	{"day", 24 * time.Hour},
	{"hour", time.Hour},
	{"minute", time.Minute},
	{"second", time.Second},
}

// Pluralize appends "s" to name unless n is exactly 1.
func Pluralize(name string, n int64) string {
	if n != 1 {
		return name + "s"
	}
	return name
}

// Format renders |d| truncated to whole seconds. Full mode joins every
// non-zero unit with ", "; compact mode returns only the largest one.
func Format(d time.Duration, full bool) string {
	if d < 0 {
		d = -d
	}
	rem := d.Truncate(time.Second)

	var parts []string
	for _, u := range units {
		n := int64(rem / u.size)
		if n == 0 {
			continue
		}
		rem -= time.Duration(n) * u.size
		parts = append(parts, strconv.FormatInt(n, 10)+" "+Pluralize(u.name, n))
		if !full {
			break
		}
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}
