package powchain

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liftedinit/powchain/internal/exporter"
	"github.com/liftedinit/powchain/internal/hasher"
)

var exportTSVCmd = &cobra.Command{
	Use:   "export-tsv [input] [output]",
	Short: "Export a JSON chain export to TSV files",
	Long:  "Reads the blocks written by 'mine json' from the input directory and writes blocks.tsv and transactions.tsv to the output directory.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := args[0]
		outputDir := args[1]

		// Check if input directory exists
		if _, err := os.Stat(inputDir); os.IsNotExist(err) {
			return fmt.Errorf("input directory '%s' does not exist", inputDir)
		}

		name, err := cmd.Flags().GetString("hash")
		if err != nil {
			return err
		}
		h, err := hasher.New(name)
		if err != nil {
			return err
		}

		n, err := exporter.ExportTSV(cmd.Context(), inputDir, outputDir, h)
		if err != nil {
			return fmt.Errorf("failed to export chain: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d blocks.\n", n)
		return nil
	},
}

func init() {
	exportTSVCmd.Flags().String("hash", hasher.SHA256, "Hash algorithm used for transaction leaf hashes")
}
