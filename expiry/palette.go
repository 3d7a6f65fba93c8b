package expiry

// ANSI escape sequences used by the default palette.
const (
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
	ansiReset   = "\x1b[0m"
)

var colorNames = map[string]string{
	"red":     ansiRed,
	"green":   ansiGreen,
	"yellow":  ansiYellow,
	"blue":    ansiBlue,
	"magenta": ansiMagenta,
	"cyan":    ansiCyan,
	"none":    "",
}

// Color returns the escape sequence for a color name such as "red".
// "none" maps to the empty sequence.
func Color(name string) (string, bool) {
	c, ok := colorNames[name]
	return c, ok
}

// Palette maps tiers and fixed outcomes to terminal colors. It is a plain
// value; callers copy it rather than share it.
type Palette struct {
	Expired  string
	Critical string
	Warning  string
	Normal   string
	Reset    string
}

// DefaultPalette: red for Expired and Critical, yellow Warning, green Normal.
func DefaultPalette() Palette {
	return Palette{
		Expired:  ansiRed,
		Critical: ansiRed,
		Warning:  ansiYellow,
		Normal:   ansiGreen,
		Reset:    ansiReset,
	}
}

// NoColor returns a palette that emits no escape sequences.
func NoColor() Palette { return Palette{} }

// For returns the color for a tier.
func (p Palette) For(t Tier) string {
	switch t {
	case Expired:
		return p.Expired
	case Critical:
		return p.Critical
	case Warning:
		return p.Warning
	default:
		return p.Normal
	}
}

// Paint wraps s in the tier color and a reset. An empty palette returns s.
func (p Palette) Paint(t Tier, s string) string {
	c := p.For(t)
	if c == "" {
		return s
	}
	return c + s + p.Reset
}
