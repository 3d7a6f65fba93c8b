// Package config loads rdapexpiry settings from a YAML file and
// RDAPEXPIRY_* environment variables. Command-line flags are applied on top
// by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	rdapclient "github.com/datum-labs/rdapexpiry"
	"github.com/datum-labs/rdapexpiry/batch"
	"github.com/datum-labs/rdapexpiry/expiry"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RDAPEXPIRY_"

// MaxBackoff caps exponential retry delays.
const MaxBackoff = 5 * time.Minute

const (
	TransportRDAP  = "rdap"
	TransportWHOIS = "whois"
)

// Config holds application settings.
type Config struct {
	Domains []string `yaml:"domains"`

	// Lookup
	Transport     string        `yaml:"transport"`
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"` // empty keeps the client default
	BootstrapURL  string        `yaml:"bootstrap_url"`
	Offline       bool          `yaml:"offline"`
	TryAllServers bool          `yaml:"try_all_servers"`
	WhoisServer   string        `yaml:"whois_server"`

	// Retry policy
	MaxAttempts int           `yaml:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff"`
	// BackoffFactor above 1 grows the delay geometrically per attempt.
	BackoffFactor float64 `yaml:"backoff_factor"`

	// Delegation probe for failed lookups
	DNSHint   bool   `yaml:"dns_hint"`
	DNSServer string `yaml:"dns_server"`

	// Output
	Short       bool       `yaml:"short"`
	JSON        bool       `yaml:"json"`
	NoColor     bool       `yaml:"no_color"`
	XLSX        string     `yaml:"xlsx"`
	MetricsFile string     `yaml:"metrics_file"`
	Verbose     bool       `yaml:"verbose"`
	Thresholds  Thresholds `yaml:"thresholds"`
	Colors      Colors     `yaml:"colors"`
}

// Thresholds are the inclusive upper bounds of the Critical and Warning tiers.
type Thresholds struct {
	Critical time.Duration `yaml:"critical"`
	Warning  time.Duration `yaml:"warning"`
}

// Colors name the terminal color of each tier (red, green, yellow, blue,
// magenta, cyan or none).
type Colors struct {
	Expired  string `yaml:"expired"`
	Critical string `yaml:"critical"`
	Warning  string `yaml:"warning"`
	Normal   string `yaml:"normal"`
}

// Default returns the built-in settings.
func Default() Config {
	th := expiry.DefaultThresholds()
	return Config{
		Transport:     TransportRDAP,
		Timeout:       10 * time.Second,
		BootstrapURL:  rdapclient.DefaultBootstrapURL,
		MaxAttempts:   batch.DefaultMaxAttempts,
		BackoffFactor: 1,
		Thresholds:    Thresholds{Critical: th.Critical, Warning: th.Warning},
		Colors: Colors{
			Expired:  "red",
			Critical: "red",
			Warning:  "yellow",
			Normal:   "green",
		},
	}
}

// Load returns Default overlaid with the YAML file at path. An empty path
// yields the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.decode(data); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from RDAPEXPIRY_* variables. Malformed values
// are reported together.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}
	e.setStringList(&c.Domains, "DOMAINS", ",")
	e.setString(&c.Transport, "TRANSPORT")
	e.setDuration(&c.Timeout, "TIMEOUT")
	e.setString(&c.UserAgent, "USER_AGENT")
	e.setString(&c.BootstrapURL, "BOOTSTRAP_URL")
	e.setBool(&c.Offline, "OFFLINE")
	e.setBool(&c.TryAllServers, "TRY_ALL_SERVERS")
	e.setString(&c.WhoisServer, "WHOIS_SERVER")
	e.setInt(&c.MaxAttempts, "MAX_ATTEMPTS")
	e.setDuration(&c.Backoff, "BACKOFF")
	e.setFloat(&c.BackoffFactor, "BACKOFF_FACTOR")
	e.setBool(&c.DNSHint, "DNS_HINT")
	e.setString(&c.DNSServer, "DNS_SERVER")
	e.setBool(&c.Short, "SHORT")
	e.setBool(&c.JSON, "JSON")
	e.setBool(&c.NoColor, "NO_COLOR")
	e.setString(&c.XLSX, "XLSX")
	e.setString(&c.MetricsFile, "METRICS_FILE")
	e.setBool(&c.Verbose, "VERBOSE")
	e.setDuration(&c.Thresholds.Critical, "CRITICAL")
	e.setDuration(&c.Thresholds.Warning, "WARNING")

	// https://no-color.org
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		c.NoColor = true
	}
	return errors.Join(e.errs...)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportRDAP, TransportWHOIS:
	default:
		errs = append(errs, fmt.Errorf("transport %q: want %s or %s", c.Transport, TransportRDAP, TransportWHOIS))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.Backoff < 0 {
		errs = append(errs, fmt.Errorf("backoff must not be negative, got %s", c.Backoff))
	}
	if c.BackoffFactor < 1 {
		errs = append(errs, fmt.Errorf("backoff_factor must be at least 1, got %g", c.BackoffFactor))
	}
	if c.Thresholds.Critical < 0 || c.Thresholds.Warning < c.Thresholds.Critical {
		errs = append(errs, fmt.Errorf("thresholds: need 0 <= critical (%s) <= warning (%s)", c.Thresholds.Critical, c.Thresholds.Warning))
	}
	if c.Transport == TransportRDAP && !c.Offline {
		if u, err := url.Parse(c.BootstrapURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("bootstrap_url %q is not an absolute http(s) URL", c.BootstrapURL))
		}
	}
	for tier, name := range map[string]string{
		"expired":  c.Colors.Expired,
		"critical": c.Colors.Critical,
		"warning":  c.Colors.Warning,
		"normal":   c.Colors.Normal,
	} {
		if _, ok := expiry.Color(name); !ok {
			errs = append(errs, fmt.Errorf("colors.%s: unknown color %q", tier, name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// RetryBackoff is the delay policy between attempts: none, constant, or
// exponential capped at MaxBackoff.
func (c Config) RetryBackoff() rdapclient.Backoff {
	switch {
	case c.Backoff <= 0:
		return rdapclient.NoBackoff()
	case c.BackoffFactor > 1:
		return rdapclient.ExponentialBackoff(c.Backoff, c.BackoffFactor, MaxBackoff)
	default:
		return rdapclient.ConstantBackoff(c.Backoff)
	}
}

// ExpiryThresholds converts the configured bounds.
func (c Config) ExpiryThresholds() expiry.Thresholds {
	return expiry.Thresholds{Critical: c.Thresholds.Critical, Warning: c.Thresholds.Warning}
}

// Palette is the terminal palette, or expiry.NoColor when color is off.
// Call Validate first; unknown names render uncolored.
func (c Config) Palette() expiry.Palette {
	if c.NoColor {
		return expiry.NoColor()
	}
	p := expiry.DefaultPalette()
	p.Expired, _ = expiry.Color(c.Colors.Expired)
	p.Critical, _ = expiry.Color(c.Colors.Critical)
	p.Warning, _ = expiry.Color(c.Colors.Warning)
	p.Normal, _ = expiry.Color(c.Colors.Normal)
	return p
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// setStringList sets a []string from env split by sep
func (e *envReader) setStringList(field *[]string, name, sep string) {
	if v, ok := e.get(name); ok {
		var out []string
		for _, s := range strings.Split(v, sep) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*field = out
	}
}

func (e *envReader) setString(field *string, name string) {
	if v, ok := e.get(name); ok {
		*field = v
	}
}

func (e *envReader) setInt(field *int, name string) {
	if v, ok := e.get(name); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*field = i
	}
}

func (e *envReader) setBool(field *bool, name string) {
	if v, ok := e.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*field = b
	}
}

func (e *envReader) setFloat(field *float64, name string) {
	if v, ok := e.get(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*field = f
	}
}

func (e *envReader) setDuration(field *time.Duration, name string) {
	if v, ok := e.get(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*field = d
	}
}
