// Command ribapurify scans bank statements from disk and prints the classified
// transactions.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement"
	"github.com/FACorreiaa/ribapurify/pkg/config"
)

var opts scanOptions

var rootCmd = &cobra.Command{
	Use:           "ribapurify",
	Short:         "Find interest (riba) in bank statements",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <file|glob>...",
	Short: "Scan PDF, CSV, XLSX or image statements",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if opts.verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if opts.timezone != "" {
			cfg.Pipeline.TimezoneOverride = opts.timezone
		}

		svc := statement.NewScanService(cfg.Pipeline, cfg.OCR, logger)

		out := cmd.OutOrStdout()
		if opts.out != "" {
			f, err := os.Create(opts.out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}

		return runScan(cmd.Context(), svc, args, opts, out, cmd.ErrOrStderr())
	},
}

func init() {
	scanCmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json, csv or xlsx")
	scanCmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write output to a file instead of stdout")
	scanCmd.Flags().StringVar(&opts.timezone, "timezone", "", "IANA timezone used when no currency marker is found")
	scanCmd.Flags().BoolVar(&opts.ribaOnly, "riba-only", false, "Only output transactions flagged as riba")
	scanCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(scanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
