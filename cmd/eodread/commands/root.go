// Package commands implements the eodread command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eodingest/internal/config"
	"eodingest/internal/expiration"
	"eodingest/internal/infrastructure"
	"eodingest/internal/ingest"
	"eodingest/internal/products"
	"eodingest/internal/validation"
	"eodingest/pkg/contracts"
)

var (
	// Global flags
	configFile string
	envFile    string
	logLevel   string
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	otel      *infrastructure.OTelProviders
	metrics   *infrastructure.IngestMetrics
	registry  *products.Registry
	resolver  expiration.Resolver
	validator *validation.FileValidator
	traceOut  io.Closer
}

var current *app

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Read vendor end-of-day futures and options files into canonical tables",
	Long: `eodread turns end-of-day settlement files from the exchange (CME),
Hanweck and XTP into one canonical table per file, with a report of every
skipped or repaired line.

Examples:
  eodread read data/10y_2019-03-21_EOD_raw_e.csv
  eodread read --vendor xtp --strict data/OZN_settlement_190321.txt
  eodread batch data --recursive --format xlsx`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it with a
// context cancelled on SIGINT or SIGTERM. Telemetry is flushed whether or
// not the command succeeded.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, teardown(ctx))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading EOD_* variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug|info|warn|error)")
}

func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		validator: validation.NewFileValidator(logger),
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.ServiceVersion = contracts.Version
	otelCfg.EnableTracing = cfg.Telemetry.Tracing
	otelCfg.SampleRatio = cfg.Telemetry.SampleRatio
	if cfg.Telemetry.Tracing && cfg.Telemetry.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Telemetry.TraceFile), 0o755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(cfg.Telemetry.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to open trace file: %w", err)
		}
		otelCfg.TraceOutput = f
		a.traceOut = f
	}
	if a.otel, err = infrastructure.InitializeOTel(otelCfg, logger); err != nil {
		return err
	}
	if a.metrics, err = infrastructure.NewIngestMetrics(a.otel.Meter); err != nil {
		return fmt.Errorf("failed to create ingest metrics: %w", err)
	}

	a.registry = products.Default()
	if cfg.Ingest.RegistryFile != "" {
		if a.registry, err = products.LoadFile(cfg.Ingest.RegistryFile); err != nil {
			return err
		}
	}
	a.resolver = expiration.NewCalendarResolver(a.registry)

	logger.Debug("Configuration loaded",
		slog.String("command", cmd.Name()),
		slog.String("data_dir", paths.DataDir),
		slog.String("output_dir", paths.OutputDir),
		slog.Any("products", cfg.Ingest.Products),
		slog.Bool("strict", cfg.Ingest.Strict))

	current = a
	return nil
}

func teardown(ctx context.Context) error {
	a := current
	if a == nil {
		return nil
	}
	current = nil

	var errs []error
	if path := a.cfg.Telemetry.MetricsFile; path != "" && a.otel != nil {
		if err := a.otel.WriteMetrics(path); err != nil {
			errs = append(errs, err)
		} else {
			a.logger.Info("Metrics written", slog.String("path", path))
		}
	}
	if a.otel != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.otel.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.traceOut != nil {
		if err := a.traceOut.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ingestConfig builds the per-file config from the loaded defaults and the
// command's flags.
func (a *app) ingestConfig(cmd *cobra.Command, flags *ingestFlags) (ingest.Config, error) {
	cfg := ingest.Config{
		Products: a.cfg.Ingest.Products,
		Strict:   a.cfg.Ingest.Strict,
		Registry: a.registry,
		Resolver: a.resolver,
		Metrics:  a.metrics,
	}
	if cmd.Flags().Changed("products") {
		cfg.Products = flags.products
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = flags.strict
	}
	if flags.snapshot != "" {
		snapshot, err := time.Parse("2006-01-02", flags.snapshot)
		if err != nil {
			return cfg, fmt.Errorf("invalid --snapshot %q: want YYYY-MM-DD", flags.snapshot)
		}
		cfg.Snapshot = snapshot
	}
	return cfg, cfg.Validate()
}

// ingestFlags are shared by read and batch.
type ingestFlags struct {
	vendor   string
	products []string
	strict   bool
	snapshot string
	format   string
}

func (f *ingestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.vendor, "vendor", "", "vendor (cme|hanweck|xtp); inferred from the file name when empty")
	cmd.Flags().StringSliceVar(&f.products, "products", nil, "keep only these product codes (default: ingest.products)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail a file on any skipped line (default: ingest.strict)")
	cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "snapshot date YYYY-MM-DD for files that carry none")
	cmd.Flags().StringVar(&f.format, "format", validation.FormatCSV, "output format (csv|xlsx)")
}
