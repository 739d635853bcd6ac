package powchain

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/liftedinit/powchain/internal/output"
)

var tableCmd = &cobra.Command{
	Use:   "table [flags]",
	Short: "Mine a chain and print it as a table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputHandler := output.NewTableOutputHandler(cmd.OutOrStdout())
		if err := mine(cmd, outputHandler); err != nil {
			return err
		}
		return errors.WithMessage(outputHandler.Close(), "failed to print chain")
	},
}
