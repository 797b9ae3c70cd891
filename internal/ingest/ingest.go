package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eodingest/internal/dataprocessing"
	apperrors "eodingest/internal/errors"
	"eodingest/internal/expiration"
	"eodingest/internal/infrastructure"
	"eodingest/internal/parsers"
	"eodingest/internal/products"
	"eodingest/pkg/contracts/domain"
)

// Config controls a single read.
type Config struct {
	// Products keeps only these product codes. Empty keeps every product.
	Products []string `validate:"dive,required,max=16"`
	// Strict turns any row skip into a STRICT_VIOLATION error.
	Strict bool

	// Snapshot is used when the file carries no snapshot date of its own.
	Snapshot time.Time
	// Registry and Resolver default to the built-in product table and the
	// calendar resolver over it.
	Registry *products.Registry
	Resolver expiration.Resolver

	Logger *slog.Logger
	// Metrics defaults to instruments on the global meter provider.
	Metrics *infrastructure.IngestMetrics
}

var validate = validator.New()

// Validate checks the config fields.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewAppValidationError(fmt.Sprintf("invalid ingest config: %v", err))
	}
	return nil
}

// ReadCMEFile reads an exchange-published EOD file.
func ReadCMEFile(ctx context.Context, path string, cfg Config) (domain.Table, *domain.ParseReport, error) {
	return ReadFile(ctx, domain.VendorCME, path, cfg)
}

// ReadHanweckFile reads a Hanweck settlement capture.
func ReadHanweckFile(ctx context.Context, path string, cfg Config) (domain.Table, *domain.ParseReport, error) {
	return ReadFile(ctx, domain.VendorHanweck, path, cfg)
}

// ReadXTPFile reads an XTP text dump.
func ReadXTPFile(ctx context.Context, path string, cfg Config) (domain.Table, *domain.ParseReport, error) {
	return ReadFile(ctx, domain.VendorXTP, path, cfg)
}

// ReadFile opens path and parses it as a file from vendor. Line references
// in the result use the file's base name.
func ReadFile(ctx context.Context, vendor domain.Vendor, path string, cfg Config) (domain.Table, *domain.ParseReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewStructuralError("cannot open input file", err).
			WithContext("path", path)
	}
	defer f.Close()

	return Read(ctx, vendor, f, filepath.Base(path), cfg)
}

// Read parses r as a file from vendor.
//
// Under strict mode a file with any skip fails with a STRICT_VIOLATION whose
// cause is the first skip. The table is nil in that case but the report is
// still returned so callers can show every skip.
func Read(ctx context.Context, vendor domain.Vendor, r io.Reader, source string, cfg Config) (domain.Table, *domain.ParseReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	parser, err := parsers.ForVendor(vendor)
	if err != nil {
		return nil, nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = infrastructure.LoggerWithContext(ctx)
	}
	logger = infrastructure.WithComponent(logger, "ingest").With(
		slog.String("vendor", string(vendor)),
		slog.String("source", source),
	)

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = infrastructure.GlobalIngestMetrics()
	}

	ctx, span := otel.Tracer(infrastructure.MeterName).Start(ctx, "ingest.read."+string(vendor),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("ingest.vendor", string(vendor)),
			attribute.String("ingest.source", source),
			attribute.Bool("ingest.strict", cfg.Strict),
		),
	)
	defer span.End()

	start := time.Now()
	res, err := parser.Parse(&contextReader{ctx: ctx, r: r}, dataprocessing.Options{
		Source:   source,
		Products: dataprocessing.NewProductSet(cfg.Products),
		Snapshot: cfg.Snapshot,
		Resolver: cfg.Resolver,
		Registry: cfg.Registry,
		Logger:   logger,
	})
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordFailure(ctx, vendor, err, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "File rejected",
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("error", err.Error()))
		return nil, nil, err
	}

	report := res.Report
	span.SetAttributes(
		attribute.String("ingest.revision", report.Revision),
		attribute.Int("ingest.total_lines", report.TotalLines),
		attribute.Int("ingest.accepted", report.Accepted),
		attribute.Int("ingest.skipped", report.Skipped()),
		attribute.Int("ingest.repaired", len(report.Repairs)),
	)

	if cfg.Strict && len(report.Skips) > 0 {
		first := report.Skips[0]
		err := apperrors.NewStrictViolationError(
			fmt.Sprintf("%d of %d data lines skipped", report.Skipped(), report.TotalLines), first).
			WithContext("source", source).
			WithContext("first_skip", first.Line.String())
		metrics.RecordFailure(ctx, vendor, err, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "strict violation")
		logger.WarnContext(ctx, "Strict mode rejected file",
			slog.Int("skipped", report.Skipped()),
			slog.String("first_skip", first.Error()))
		return nil, report, err
	}

	metrics.RecordParse(ctx, report, elapsed)
	span.SetStatus(codes.Ok, "")
	logger.InfoContext(ctx, "File ingested",
		slog.Int("accepted", report.Accepted),
		slog.Int("skipped", report.Skipped()),
		slog.Int("repaired", len(report.Repairs)),
		slog.Duration("elapsed", elapsed))
	return res.Table, report, nil
}

// contextReader stops a parse when the context is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
