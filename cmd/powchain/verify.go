package powchain

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/powchain/internal/config"
	"github.com/liftedinit/powchain/internal/exporter"
	"github.com/liftedinit/powchain/internal/hasher"
	"github.com/liftedinit/powchain/internal/ledger"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [input]",
	Short: "Verify the integrity of a chain exported with 'mine json'",
	Long:  "Reads the blocks of a JSON export, recomputes every hash and Merkle root, and checks the previous-hash links and difficulty.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := args[0]
		if _, err := os.Stat(inputDir); os.IsNotExist(err) {
			return fmt.Errorf("input directory '%s' does not exist", inputDir)
		}

		verifyConfig := config.LoadVerifyConfigFromCLI()
		if err := verifyConfig.Validate(); err != nil {
			return fmt.Errorf("invalid Verify configuration: %w", err)
		}

		h, err := hasher.New(verifyConfig.HashAlgorithm)
		if err != nil {
			return err
		}

		blocks, err := exporter.LoadBlocks(inputDir)
		if err != nil {
			return err
		}

		if err := ledger.VerifyBlocks(h, verifyConfig.Difficulty, blocks); err != nil {
			slog.Warn("Chain verification failed", "error", err)
			return fmt.Errorf("chain invalid: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "chain valid (%d blocks)\n", len(blocks))
		return nil
	},
}

func init() {
	verifyCmd.Flags().IntP("difficulty", "d", ledger.DefaultDifficulty, "Difficulty the chain was mined at")
	verifyCmd.Flags().String("hash", hasher.SHA256, fmt.Sprintf("Hash algorithm the chain was mined with (%s)", hasher.ValidAlgorithmsStr))

	if err := viper.BindPFlag("verify-difficulty", verifyCmd.Flags().Lookup("difficulty")); err != nil {
		slog.Error("Failed to bind verifyCmd flags", "error", err)
	}
	if err := viper.BindPFlag("verify-hash", verifyCmd.Flags().Lookup("hash")); err != nil {
		slog.Error("Failed to bind verifyCmd flags", "error", err)
	}
}
