package powchain

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/powchain/internal/config"
	"github.com/liftedinit/powchain/internal/output"
)

var jsonCmd = &cobra.Command{
	Use:   "json [flags]",
	Short: "Mine a chain to JSON files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		jsonConfig := config.LoadJSONConfigFromCLI()
		if err := jsonConfig.Validate(); err != nil {
			return fmt.Errorf("invalid JSON configuration: %w", err)
		}
		slog.Debug("Command-line argument", "json-out", jsonConfig.Output)

		outputHandler, err := output.NewJSONOutputHandler(jsonConfig.Output, mineConfig.Hasher())
		if err != nil {
			return fmt.Errorf("failed to create JSON output handler: %w", err)
		}
		defer func() {
			if closeErr := outputHandler.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to write JSON output: %w", closeErr)
			}
		}()

		return mine(cmd, outputHandler)
	},
}

func init() {
	jsonCmd.Flags().StringP("json-out", "o", "out", "JSON output directory")
	if err := viper.BindPFlags(jsonCmd.Flags()); err != nil {
		slog.Error("Failed to bind jsonCmd flags", "error", err)
	}
}
