package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"eodingest/internal/files"
	"eodingest/internal/infrastructure"
	"eodingest/pkg/contracts/domain"
)

var (
	readFlags  ingestFlags
	readOutput string
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Read one vendor file",
	Long: `Read one vendor file and write its canonical table and parse report.

The table goes to <output_dir>/<name>.<format> unless --out is given; the
report always goes to <output_dir>/reports/<name>_report.csv.

Example:
  eodread read data/Hanweck_CME_Settlement_OOF_20190321.csv
  eodread read --vendor cme --products OZN,ZN --format xlsx eod.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readFlags.register(readCmd)
	readCmd.Flags().StringVarP(&readOutput, "out", "o", "", "output file (extension follows --format)")
}

func runRead(cmd *cobra.Command, args []string) error {
	a := current
	path := args[0]
	ctx := infrastructure.EnsureTraceID(cmd.Context())

	if err := a.validator.ValidateInputFile(path); err != nil {
		return err
	}
	format, err := a.validator.ValidateOutputFormat(readFlags.format)
	if err != nil {
		return err
	}
	vendor, err := resolveVendor(readFlags.vendor, path)
	if err != nil {
		return err
	}
	cfg, err := a.ingestConfig(cmd, &readFlags)
	if err != nil {
		return err
	}

	in := files.VendorFile{Vendor: vendor}
	in.Path = path
	in.Name = filepath.Base(path)
	summary := a.processFile(ctx, cfg, in, format, readOutput)

	printSummary(cmd.OutOrStdout(), summary)
	return summary.Err
}

// resolveVendor prefers an explicit name over inference from the file name.
func resolveVendor(name, path string) (domain.Vendor, error) {
	if name != "" {
		return domain.ParseVendor(strings.ToLower(name))
	}
	if v, ok := files.InferVendor(path); ok {
		return v, nil
	}
	return "", fmt.Errorf("cannot infer the vendor of %s; pass --vendor", path)
}
