package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"eodingest/internal/exporter"
	"eodingest/internal/files"
	"eodingest/internal/infrastructure"
	"eodingest/pkg/contracts/domain"
)

var (
	batchFlags     ingestFlags
	batchRecursive bool
	batchWorkers   int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Read every recognized vendor file in a directory",
	Long: `Read every file under dir (default: paths.data_dir) whose vendor can be
inferred from its name. Files are parsed concurrently, at most --workers at a
time. A failed file never stops the others; the command fails at the end if
any file failed.

A summary with one row per file goes to
<output_dir>/reports/batch_<run id>.csv.

Example:
  eodread batch data --recursive
  eodread batch --vendor xtp --workers 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchFlags.register(batchCmd)
	batchCmd.Flags().BoolVarP(&batchRecursive, "recursive", "r", false, "descend into subdirectories")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "files parsed at once (default: ingest.workers)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	a := current
	dir := a.paths.DataDir
	if len(args) == 1 {
		dir = args[0]
	}

	runID := infrastructure.GenerateTraceID()
	ctx := infrastructure.WithTraceID(cmd.Context(), runID)
	logger := infrastructure.WithComponent(a.logger, "batch")

	if err := a.validator.ValidateInputDirectory(dir); err != nil {
		return err
	}
	format, err := a.validator.ValidateOutputFormat(batchFlags.format)
	if err != nil {
		return err
	}
	cfg, err := a.ingestConfig(cmd, &batchFlags)
	if err != nil {
		return err
	}

	inputs, ignored, err := files.NewDiscovery("").FindVendorFiles(dir, batchRecursive)
	if err != nil {
		return err
	}
	for _, f := range ignored {
		logger.DebugContext(ctx, "Ignoring file with unrecognized name", slog.String("file", f.Path))
	}
	if batchFlags.vendor != "" {
		vendor, err := domain.ParseVendor(strings.ToLower(batchFlags.vendor))
		if err != nil {
			return err
		}
		inputs = files.FilterVendor(inputs, vendor)
	}
	if len(inputs) == 0 {
		logger.WarnContext(ctx, "No vendor files found", slog.String("directory", dir))
		fmt.Fprintf(cmd.OutOrStdout(), "no vendor files found in %s\n", dir)
		return nil
	}

	workers := a.cfg.Ingest.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}
	logger.InfoContext(ctx, "Batch started",
		slog.String("directory", dir),
		slog.Int("files", len(inputs)),
		slog.Int("workers", workers))

	// Each goroutine owns one slot; a file error is recorded, not returned,
	// so one bad file never cancels the rest.
	summaries := make([]exporter.FileSummary, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			summaries[i] = a.processFile(gctx, cfg, in, format, "")
			return nil
		})
	}
	_ = g.Wait()

	summaryPath := filepath.Join(a.paths.ReportsDir, fmt.Sprintf("batch_%s.csv", runID))
	if err := exporter.NewReportExporter(a.paths).ExportSummaries(summaries, summaryPath); err != nil {
		return err
	}

	failed := 0
	out := cmd.OutOrStdout()
	for _, s := range summaries {
		printSummary(out, s)
		if s.Err != nil {
			failed++
		}
	}
	fmt.Fprintf(out, "summary: %s\n", summaryPath)

	logger.InfoContext(ctx, "Batch finished",
		slog.Int("files", len(inputs)),
		slog.Int("failed", failed),
		slog.String("summary", summaryPath))

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(inputs))
	}
	return nil
}
