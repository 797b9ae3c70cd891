package infrastructure

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eodingest/internal/errors"
	"eodingest/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestOTelInitialization(t *testing.T) {
	var spans bytes.Buffer
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceOutput = &spans

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)
	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.Registry)

	_, span := providers.Tracer.Start(context.Background(), "parse-file")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(ctx))
	assert.Contains(t, spans.String(), "parse-file")
}

func TestOTelInitialization_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: ServiceName}, testLogger())
	require.NoError(t, err)
	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Error(t, providers.WriteMetrics(filepath.Join(t.TempDir(), "m.prom")))
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestIngestMetrics_WriteTextfile(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewIngestMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	report := &domain.ParseReport{
		Vendor:     domain.VendorCME,
		TotalLines: 4,
		Accepted:   3,
		Filtered:   2,
		Skips:      []domain.RowSkip{{Reason: domain.SkipMalformedField}},
		Repairs:    []domain.Repair{{Kind: domain.RepairMissingField}},
	}
	metrics.RecordParse(ctx, report, 20*time.Millisecond)
	metrics.RecordFailure(ctx, domain.VendorXTP, apperrors.NewUnsupportedFormatError("bad"), time.Millisecond)

	path := filepath.Join(t.TempDir(), "eodread.prom")
	require.NoError(t, providers.WriteMetrics(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "eod_files_parsed_total")
	assert.Contains(t, text, `reason="MalformedField"`)
	assert.Contains(t, text, `kind="MissingOptionalField"`)
	assert.Contains(t, text, `error_type="UNSUPPORTED_FORMAT"`)
	assert.True(t, strings.Contains(text, `outcome="accepted"`))
}

func TestIngestMetrics_NilIsNoop(t *testing.T) {
	var m *IngestMetrics
	assert.NotPanics(t, func() {
		m.RecordParse(context.Background(), &domain.ParseReport{}, time.Second)
		m.RecordFailure(context.Background(), domain.VendorCME, nil, time.Second)
	})
}
