package powchain

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/powchain/internal/config"
	"github.com/liftedinit/powchain/internal/output"
)

var tsvCmd = &cobra.Command{
	Use:   "tsv [flags]",
	Short: "Mine a chain to TSV files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		tsvConfig := config.LoadTSVConfigFromCLI()
		if err := tsvConfig.Validate(); err != nil {
			return errors.WithMessage(err, "invalid TSV configuration")
		}
		slog.Debug("Command-line argument", "tsv-out", tsvConfig.Output)

		outputHandler, err := output.NewTSVOutputHandler(tsvConfig.Output, mineConfig.Hasher())
		if err != nil {
			return errors.WithMessage(err, "failed to create TSV output handler")
		}
		defer func() {
			if closeErr := outputHandler.Close(); closeErr != nil && err == nil {
				err = errors.WithMessage(closeErr, "failed to flush TSV output")
			}
		}()

		return mine(cmd, outputHandler)
	},
}

func init() {
	tsvCmd.Flags().StringP("tsv-out", "o", "tsv", "Output directory")
	if err := viper.BindPFlags(tsvCmd.Flags()); err != nil {
		slog.Error("Failed to bind tsvCmd flags", "error", err)
	}
}
