// rdapexpiry reports how long each domain has left before its registration
// expires.
//
//	rdapexpiry [flags] <domain>...
//
// Settings come from an optional YAML file (--config), then RDAPEXPIRY_*
// environment variables, then flags.
//
// Run examples
//
//	rdapexpiry example.com example.org
//	rdapexpiry --short --no-color example.com
//	rdapexpiry --json --dns-hint nosuchtld.zzz
//	rdapexpiry --offline --xlsx report.xlsx --metrics-file /var/lib/node_exporter/rdapexpiry.prom example.com
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	rc "github.com/datum-labs/rdapexpiry"
	"github.com/datum-labs/rdapexpiry/batch"
	"github.com/datum-labs/rdapexpiry/config"
	"github.com/datum-labs/rdapexpiry/dnsprobe"
	"github.com/datum-labs/rdapexpiry/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

type flags struct {
	configPath    string
	short         bool
	checkCerts    bool
	json          bool
	noColor       bool
	transport     string
	timeout       time.Duration
	userAgent     string
	bootstrapURL  string
	offline       bool
	maxAttempts   int
	backoff       time.Duration
	backoffFactor float64
	tryAllServers bool
	dnsHint       bool
	dnsServer     string
	whoisServer   string
	xlsx          string
	metricsFile   string
	verbose       bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	def := config.Default()

	cmd := &cobra.Command{
		Use:           "rdapexpiry [flags] <domain>...",
		Short:         "Report domain registration expiry over RDAP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(stderr)
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				log.WithError(err).Error("invalid configuration")
				return err
			}
			if cfg.Verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			domains := args
			if len(domains) == 0 {
				domains = cfg.Domains
			}
			if len(domains) == 0 {
				err := errors.New("no domains given")
				log.Error(err)
				_ = cmd.Usage()
				return err
			}
			return run(cmd.Context(), cfg, domains, stdout, log)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML config file")
	fl.BoolVarP(&f.short, "short", "s", def.Short, "show only the largest time unit")
	fl.BoolVarP(&f.checkCerts, "check-certificates", "c", false, "accepted for compatibility; has no effect")
	_ = fl.MarkHidden("check-certificates")
	fl.BoolVar(&f.json, "json", def.JSON, "emit a JSON array instead of text")
	fl.BoolVar(&f.noColor, "no-color", def.NoColor, "disable ANSI colors")
	fl.StringVar(&f.transport, "transport", def.Transport, "lookup transport: rdap or whois")
	fl.DurationVar(&f.timeout, "timeout", def.Timeout, "per-request timeout")
	fl.StringVar(&f.userAgent, "user-agent", def.UserAgent, "HTTP User-Agent (default: built-in)")
	fl.StringVar(&f.bootstrapURL, "bootstrap-url", def.BootstrapURL, "IANA DNS bootstrap document")
	fl.BoolVar(&f.offline, "offline", def.Offline, "use the embedded bootstrap snapshot instead of fetching it")
	fl.IntVar(&f.maxAttempts, "max-attempts", def.MaxAttempts, "lookup attempts per domain")
	fl.DurationVar(&f.backoff, "backoff", def.Backoff, "delay between attempts")
	fl.Float64Var(&f.backoffFactor, "backoff-factor", def.BackoffFactor, "multiply the delay by this factor after each attempt")
	fl.BoolVar(&f.tryAllServers, "try-all-servers", def.TryAllServers, "fall back to the other bootstrap servers on failure")
	fl.BoolVar(&f.dnsHint, "dns-hint", def.DNSHint, "probe DNS delegation for failed lookups")
	fl.StringVar(&f.dnsServer, "dns-server", def.DNSServer, "resolver for --dns-hint (default: /etc/resolv.conf)")
	fl.StringVar(&f.whoisServer, "whois-server", def.WhoisServer, "pin the WHOIS server for --transport whois")
	fl.StringVar(&f.xlsx, "xlsx", def.XLSX, "also write an XLSX report to this file")
	fl.StringVar(&f.metricsFile, "metrics-file", def.MetricsFile, "also write Prometheus metrics to this textfile")
	fl.BoolVarP(&f.verbose, "verbose", "v", def.Verbose, "debug logging on stderr")
	return cmd
}

// resolveConfig layers file, environment and explicitly set flags.
func resolveConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, fmt.Errorf("config: environment: %w", err)
	}

	changed := cmd.Flags().Changed
	setIf := func(name string, apply func()) {
		if changed(name) {
			apply()
		}
	}
	setIf("short", func() { cfg.Short = f.short })
	setIf("json", func() { cfg.JSON = f.json })
	setIf("no-color", func() { cfg.NoColor = f.noColor })
	setIf("transport", func() { cfg.Transport = f.transport })
	setIf("timeout", func() { cfg.Timeout = f.timeout })
	setIf("user-agent", func() { cfg.UserAgent = f.userAgent })
	setIf("bootstrap-url", func() { cfg.BootstrapURL = f.bootstrapURL })
	setIf("offline", func() { cfg.Offline = f.offline })
	setIf("max-attempts", func() { cfg.MaxAttempts = f.maxAttempts })
	setIf("backoff", func() { cfg.Backoff = f.backoff })
	setIf("backoff-factor", func() { cfg.BackoffFactor = f.backoffFactor })
	setIf("try-all-servers", func() { cfg.TryAllServers = f.tryAllServers })
	setIf("dns-hint", func() { cfg.DNSHint = f.dnsHint })
	setIf("dns-server", func() { cfg.DNSServer = f.dnsServer })
	setIf("whois-server", func() { cfg.WhoisServer = f.whoisServer })
	setIf("xlsx", func() { cfg.XLSX = f.xlsx })
	setIf("metrics-file", func() { cfg.MetricsFile = f.metricsFile })
	setIf("verbose", func() { cfg.Verbose = f.verbose })

	return cfg, cfg.Validate()
}

func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	log.SetLevel(logrus.InfoLevel)
	return log
}

type flusher interface {
	Flush() error
}

func run(ctx context.Context, cfg config.Config, domains []string, stdout io.Writer, log *logrus.Logger) error {
	resolver, err := newResolver(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("cannot start lookups")
		return err
	}

	full := !cfg.Short
	var (
		reporters batch.Reporters
		flushers  []flusher
	)
	if cfg.JSON {
		j := report.NewJSON(stdout, full)
		reporters = append(reporters, j)
		flushers = append(flushers, j)
	} else {
		reporters = append(reporters, report.NewText(stdout, report.WithPalette(cfg.Palette()), report.WithFull(full)))
	}
	if cfg.XLSX != "" {
		x := report.NewXLSX(cfg.XLSX, full)
		reporters = append(reporters, x)
		flushers = append(flushers, x)
	}
	if cfg.MetricsFile != "" {
		m := report.NewMetrics(cfg.MetricsFile)
		reporters = append(reporters, m)
		flushers = append(flushers, m)
	}

	opts := []batch.Option{
		batch.WithReporter(reporters),
		batch.WithMaxAttempts(cfg.MaxAttempts),
		batch.WithBackoff(cfg.RetryBackoff()),
		batch.WithThresholds(cfg.ExpiryThresholds()),
		batch.WithLogger(log),
	}
	if cfg.DNSHint {
		p := dnsprobe.New(dnsprobe.WithServer(cfg.DNSServer), dnsprobe.WithTimeout(cfg.Timeout), dnsprobe.WithLogger(log))
		log.WithField("server", p.Server()).Debug("delegation probe enabled")
		opts = append(opts, batch.WithDelegationProbe(p))
	}

	driver, err := batch.New(resolver, opts...)
	if err != nil {
		return err
	}
	sum := driver.Run(ctx, domains)

	var errs []error
	for _, fl := range flushers {
		if err := fl.Flush(); err != nil {
			log.WithError(err).Error("writing report failed")
			errs = append(errs, err)
		}
	}
	log.WithFields(logrus.Fields{
		"run_id":         sum.RunID,
		"domains":        sum.Total,
		"attempts":       sum.Attempts,
		"lookup_failed":  sum.ByStatus[batch.LookupFailed],
		"not_registered": sum.ByStatus[batch.NotRegistered],
	}).Debug("done")
	return errors.Join(errs...)
}

// newResolver builds the lookup backend. For RDAP the bootstrap registry
// is obtained once up front and pinned for the whole batch; failing to get
// it ends the run.
func newResolver(ctx context.Context, cfg config.Config, log *logrus.Logger) (batch.Resolver, error) {
	if cfg.Transport == config.TransportWHOIS {
		return rc.NewWhoisResolver(
			rc.WithWhoisServer(cfg.WhoisServer),
			rc.WithWhoisTimeout(cfg.Timeout),
			rc.WithWhoisLogger(log),
		), nil
	}

	opts := []rc.Option{
		rc.WithHTTPDoer(&http.Client{Timeout: cfg.Timeout}),
		rc.WithTimeout(cfg.Timeout),
		rc.WithBootstrapURL(cfg.BootstrapURL),
		rc.WithServerFallback(cfg.TryAllServers),
		rc.WithLogger(log),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, rc.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Offline {
		reg, err := rc.EmbeddedRegistry()
		if err != nil {
			return nil, err
		}
		log.WithField("publication", reg.Publication.Format(time.DateOnly)).Debug("using embedded bootstrap snapshot")
		opts = append(opts, rc.WithRegistry(reg))
	}

	reg, err := rc.New(opts...).LoadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	return rc.New(append(opts, rc.WithRegistry(reg))...), nil
}
