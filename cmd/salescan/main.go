// salescan - streaming sales-ledger aggregator.
// Reads a JSON array of item records and reports per-category item
// counts and sale totals, deduplicated by item identifier.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/salescan/salescan/pkg/config"
	"github.com/salescan/salescan/pkg/hooks"
	"github.com/salescan/salescan/pkg/meter"
	"github.com/salescan/salescan/pkg/process"
	"github.com/salescan/salescan/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	configFile string
	bufferSize int
	noProgress bool
	quiet      bool
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "salescan [ledger-file]",
	Short: "salescan - aggregate a JSON sales ledger by category",
	Long: `salescan streams a JSON sales ledger (a single array of item records),
drops duplicate and unidentified records, and reports item counts and
total sale value per category.

The ledger is never materialized in memory; arbitrarily large files are
processed record by record with a live progress display. Gzip-compressed
ledgers (.json.gz) are handled transparently.

A sizing or mid-stream failure is reported but does not abort: the run
prints whatever totals accumulated before the failure.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
	Args:    cobra.MaximumNArgs(1),
	RunE:    runProcess,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "explicit config file (YAML)")
	rootCmd.Flags().IntVar(&bufferSize, "buffer-size", 0, "read buffer size in bytes (0 = from config)")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the banner and run statistics")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log run details to stderr")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.Input.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no ledger file given and none configured")
	}

	if bufferSize <= 0 {
		bufferSize = cfg.Input.BufferSize
	}
	showProgress := cfg.Progress.Enabled && !noProgress && !quiet

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		tui.PrintHeader(version)
	}

	opts := process.Options{
		BufferSize:      bufferSize,
		DefaultCategory: cfg.Report.DefaultCategory,
	}
	if showProgress {
		width := cfg.Progress.Width
		desc := "  " + filepath.Base(path)
		opts.NewSink = func(total int64) meter.Sink {
			return tui.ShowProgress(total, desc, width)
		}
	}

	proc := process.New(opts)
	if verbose {
		proc.Hooks().RegisterPreRun(func(ctx context.Context, info *hooks.SourceInfo) (context.Context, error) {
			fmt.Fprintf(os.Stderr, "processing %s (%s, %d bytes)\n", info.Path, info.Format, info.SizeBytes)
			return ctx, nil
		})
		proc.Hooks().RegisterPostRun(hooks.LoggingHook(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	}

	res := proc.Run(ctx, path)
	if res.Err != nil {
		tui.PrintError(res.Err)
	}

	if quiet {
		printPlain(res, cfg.Report.Precision)
		return nil
	}

	tui.PrintReport(os.Stdout, &tui.Report{
		Counts:     res.Counts,
		Sales:      res.Sales,
		Accepted:   res.Accepted,
		Duplicates: res.Duplicates,
		Unkeyed:    res.Unkeyed,
		BytesRead:  res.BytesRead,
		Duration:   res.Duration,
		Precision:  cfg.Report.Precision,
		Err:        res.Err,
	})
	return nil
}

// printPlain emits the two mappings without styling, one category per
// line, for scripting.
func printPlain(res *process.Result, precision int) {
	if precision <= 0 {
		precision = 2
	}
	fmt.Println("Items per category:")
	for category, count := range res.Counts {
		fmt.Printf("%s: %d\n", category, count)
	}
	fmt.Println()
	fmt.Println("Total sales per category:")
	for category, total := range res.Sales {
		fmt.Printf("%s: %.*f\n", category, precision, total)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		m := config.NewManager()
		if err := m.LoadFile(configFile); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", configFile, err)
		}
		return m.Get(), nil
	}
	return config.Global().Get(), nil
}
