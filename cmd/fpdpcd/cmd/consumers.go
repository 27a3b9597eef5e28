package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	gofpd "github.com/albertocavalcante/go-fpd"
)

var (
	jsonOutput bool
	checkIndex bool
)

var consumersCmd = &cobra.Command{
	Use:   "consumers <fpd-file>",
	Short: "Show which module instances consume each PCD",
	Long: `Build the consumer index of a platform and print it, sorted by PCD.

Examples:
  fpdpcd consumers -w workspace/ Nt32.fpd.yaml
  fpdpcd consumers -w workspace/ --json Nt32.fpd.yaml
  fpdpcd consumers -w workspace/ --check Nt32.fpd.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runConsumers,
}

func init() {
	rootCmd.AddCommand(consumersCmd)

	consumersCmd.Flags().BoolVar(&jsonOutput, "json", false,
		"output JSON instead of text")
	consumersCmd.Flags().BoolVar(&checkIndex, "check", false,
		"fail if the platform violates PCD consistency rules")
}

func runConsumers(cmd *cobra.Command, args []string) error {
	engine, err := gofpd.Open(args[0], workspaceDir, engineOptions()...)
	if err != nil {
		return err
	}

	report := engine.Report()
	if jsonOutput {
		data, err := report.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		fmt.Fprint(cmd.OutOrStdout(), report.ToText())
	}

	if checkIndex {
		return engine.CheckConsistency()
	}
	return nil
}
