package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-fpd/pcd"
)

var datumType string

var sizeofCmd = &cobra.Command{
	Use:   "sizeof <value>",
	Short: "Print the max datum size recorded for a PCD value",
	Long: `Print the byte size a value occupies in a PCD build definition.

VOID* literals take three forms: L"..." (two bytes per character), "..."
(one byte per character) and {0x01, 0x02} (one byte per element).

Examples:
  fpdpcd sizeof 'L"Firmware"'
  fpdpcd sizeof '{0x1, 0x2, 0x3}'
  fpdpcd sizeof --datum UINT32 0x10`,
	Args: cobra.ExactArgs(1),
	RunE: runSizeof,
}

func init() {
	rootCmd.AddCommand(sizeofCmd)

	sizeofCmd.Flags().StringVarP(&datumType, "datum", "d", pcd.DatumPointer,
		"datum type of the value")
}

func runSizeof(cmd *cobra.Command, args []string) error {
	size, err := pcd.MaxDatumSize(datumType, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), size)
	return nil
}
