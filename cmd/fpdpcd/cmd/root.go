package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	gofpd "github.com/albertocavalcante/go-fpd"
)

var (
	// Global flags
	verbose      bool
	workspaceDir string
	workers      int
	strict       bool
)

var rootCmd = &cobra.Command{
	Use:   "fpdpcd",
	Short: "PCD consistency tool for EDK2 platform descriptions",
	Long: `Reconcile the PCD build definitions of a platform description (FPD) with
the PCD usage of its modules and library instances, as declared by the
module (MSA) and package (SPD) descriptors of a workspace.

Examples:
  fpdpcd sync -w workspace/ Nt32.fpd.yaml                 # Reconcile every module
  fpdpcd adjust -w workspace/ --dry-run Nt32.fpd.yaml KEY # Preview one module
  fpdpcd consumers -w workspace/ --json Nt32.fpd.yaml     # Dump the consumer index
  fpdpcd sizeof 'L"Firmware"'                             # Size a VOID* literal`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", ".",
		"workspace directory holding .spd.bzl and .msa.bzl descriptors")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 10,
		"number of parallel workers used by sync")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict-dynamic", false,
		"never bind a generic DYNAMIC usage to DYNAMIC")
}

// engineOptions builds the engine options from the global flags.
func engineOptions() []gofpd.Option {
	opts := []gofpd.Option{
		gofpd.WithWorkers(workers),
		gofpd.WithStrictDynamicResolution(strict),
	}
	if verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, gofpd.WithLogger(slog.New(handler).With("component", "fpdpcd")))
	}
	return opts
}
