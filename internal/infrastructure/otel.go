package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	apperrors "eodingest/internal/errors"
	"eodingest/pkg/contracts/domain"
)

const (
	ServiceName = "eodingest"
	MeterName   = "eodingest"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	EnableTracing  bool
	// TraceOutput receives finished spans as JSON; nil means stderr.
	TraceOutput   io.Writer
	SampleRatio   float64
	EnableMetrics bool
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// Registry backs the metrics exporter and can be dumped as a textfile.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// DefaultOTelConfig returns metrics on and tracing off.
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "dev",
		SampleRatio:    1.0,
		EnableMetrics:  true,
	}
}

// InitializeOTel creates the providers and installs them globally.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		out := cfg.TraceOutput
		if out == nil {
			out = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetTracerProvider(tp)
	}

	if cfg.EnableMetrics {
		reg := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.Registry = reg
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)
	}

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))
	return providers, nil
}

// WriteMetrics dumps the current metric values in Prometheus text format,
// for collection by a node exporter textfile collector.
func (p *OTelProviders) WriteMetrics(path string) error {
	if p.Registry == nil {
		return fmt.Errorf("metrics are not enabled")
	}
	if err := prometheus.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// IngestMetrics are the counters and timings recorded per parsed file.
type IngestMetrics struct {
	FilesTotal    metric.Int64Counter
	RowsTotal     metric.Int64Counter
	SkipsTotal    metric.Int64Counter
	RepairsTotal  metric.Int64Counter
	ParseDuration metric.Float64Histogram
}

// NewIngestMetrics creates the ingest instruments on meter.
func NewIngestMetrics(meter metric.Meter) (*IngestMetrics, error) {
	files, err := meter.Int64Counter("eod_files_parsed_total",
		metric.WithDescription("Files parsed, by vendor and outcome"))
	if err != nil {
		return nil, err
	}
	rows, err := meter.Int64Counter("eod_rows_total",
		metric.WithDescription("Data lines, by vendor and outcome"))
	if err != nil {
		return nil, err
	}
	skips, err := meter.Int64Counter("eod_row_skips_total",
		metric.WithDescription("Skipped data lines, by vendor and reason"))
	if err != nil {
		return nil, err
	}
	repairs, err := meter.Int64Counter("eod_row_repairs_total",
		metric.WithDescription("Row repairs, by vendor and kind"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("eod_parse_duration_seconds",
		metric.WithDescription("Time to parse one file"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &IngestMetrics{
		FilesTotal:    files,
		RowsTotal:     rows,
		SkipsTotal:    skips,
		RepairsTotal:  repairs,
		ParseDuration: duration,
	}, nil
}

var (
	globalIngestMetrics     *IngestMetrics
	globalIngestMetricsOnce sync.Once
)

// GlobalIngestMetrics returns instruments on the global meter provider. They
// are no-ops until InitializeOTel installs a provider.
func GlobalIngestMetrics() *IngestMetrics {
	globalIngestMetricsOnce.Do(func() {
		m, err := NewIngestMetrics(otel.Meter(MeterName))
		if err != nil {
			slog.Default().Warn("Failed to create ingest metrics", slog.String("error", err.Error()))
			return
		}
		globalIngestMetrics = m
	})
	return globalIngestMetrics
}

// RecordParse records a completed parse.
func (m *IngestMetrics) RecordParse(ctx context.Context, report *domain.ParseReport, elapsed time.Duration) {
	if m == nil || report == nil {
		return
	}
	vendor := attribute.String("vendor", string(report.Vendor))
	m.FilesTotal.Add(ctx, 1, metric.WithAttributes(vendor, attribute.String("outcome", "parsed")))
	m.ParseDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(vendor))

	m.RowsTotal.Add(ctx, int64(report.Accepted), metric.WithAttributes(vendor, attribute.String("outcome", "accepted")))
	m.RowsTotal.Add(ctx, int64(report.Skipped()), metric.WithAttributes(vendor, attribute.String("outcome", "skipped")))
	m.RowsTotal.Add(ctx, int64(report.Filtered), metric.WithAttributes(vendor, attribute.String("outcome", "filtered")))
	for reason, n := range report.SkipCounts() {
		m.SkipsTotal.Add(ctx, int64(n), metric.WithAttributes(vendor, attribute.String("reason", string(reason))))
	}
	for kind, n := range report.RepairCounts() {
		m.RepairsTotal.Add(ctx, int64(n), metric.WithAttributes(vendor, attribute.String("kind", string(kind))))
	}
}

// RecordFailure records a file that could not be parsed.
func (m *IngestMetrics) RecordFailure(ctx context.Context, vendor domain.Vendor, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("vendor", string(vendor)),
		attribute.String("outcome", "failed"),
		attribute.String("error_type", string(apperrors.TypeOf(err))),
	)
	m.FilesTotal.Add(ctx, 1, attrs)
	m.ParseDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("vendor", string(vendor))))
}
