package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	gofpd "github.com/albertocavalcante/go-fpd"
	"github.com/albertocavalcante/go-fpd/fpd"
)

var (
	dryRun   bool
	toStdout bool
)

var adjustCmd = &cobra.Command{
	Use:   "adjust <fpd-file> <module-key>",
	Short: "Reconcile the PCDs of one module instance",
	Long: `Reconcile one module instance, identified by its key:

  moduleGuid moduleVersion packageGuid packageVersion arch...

A blank version is written as "null". With --dry-run the changes are only
listed. With --stdout the reconciled platform is printed instead of being
written back.

Examples:
  fpdpcd adjust -w workspace/ Nt32.fpd.yaml "1A1E4886-9517-440E-9FDE-3BE44CEE2136 1.0 5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC 0.3 IA32"
  fpdpcd adjust --dry-run Nt32.fpd.yaml "$KEY"
  fpdpcd adjust --stdout Nt32.fpd.yaml "$KEY" > Nt32.new.fpd.yaml`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAdjust,
}

func init() {
	rootCmd.AddCommand(adjustCmd)

	adjustCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false,
		"list the changes without writing the platform file")
	adjustCmd.Flags().BoolVar(&toStdout, "stdout", false,
		"print the reconciled platform instead of writing the platform file")
}

func runAdjust(cmd *cobra.Command, args []string) error {
	fpdPath := args[0]
	key, err := fpd.ParseModuleSAKey(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	engine, err := gofpd.Open(fpdPath, workspaceDir, engineOptions()...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		diff, err := engine.PlanAdjust(key)
		if diff != nil {
			for _, c := range diff.Removed {
				fmt.Fprintf(out, "- %s\n", c.ID)
			}
			for _, c := range diff.Added {
				fmt.Fprintf(out, "+ %s (%s)\n", c.ID, c.Owner)
			}
			fmt.Fprintf(out, "%d changes, %d unchanged\n", diff.TotalChanges(), len(diff.Unchanged))
		}
		return err
	}

	changed, adjustErr := engine.AdjustPcd(key)
	if toStdout {
		if _, err := engine.Document().WriteTo(out); err != nil {
			return err
		}
		return adjustErr
	}
	if changed {
		if err := engine.Document().WriteFile(fpdPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated %s\n", fpdPath)
	} else {
		fmt.Fprintln(out, "No changes")
	}
	return adjustErr
}
