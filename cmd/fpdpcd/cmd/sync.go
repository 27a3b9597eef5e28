package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	gofpd "github.com/albertocavalcante/go-fpd"
)

var syncCmd = &cobra.Command{
	Use:   "sync <fpd-file>",
	Short: "Reconcile the PCDs of every module in a platform",
	Long: `Reconcile every module instance of the platform with the PCD usage of the
module and its library instances. The platform file is rewritten when
anything changed. Failing modules are reported together at the end; the
changes of the other modules are kept.

Examples:
  fpdpcd sync -w workspace/ Nt32.fpd.yaml
  fpdpcd sync -w workspace/ --workers 4 -v Nt32.fpd.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	result, err := gofpd.SyncFile(cmd.Context(), args[0], workspaceDir, engineOptions()...)
	if result != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Modules: %d, changed: %d\n", result.Modules, len(result.Changed))
		for _, key := range result.Changed {
			fmt.Fprintf(cmd.OutOrStdout(), "  ~ %s\n", key)
		}
	}
	return err
}
