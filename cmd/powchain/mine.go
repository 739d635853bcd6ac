package powchain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/powchain/internal/config"
	"github.com/liftedinit/powchain/internal/hasher"
	"github.com/liftedinit/powchain/internal/ledger"
	"github.com/liftedinit/powchain/internal/metrics"
	"github.com/liftedinit/powchain/internal/mining"
	"github.com/liftedinit/powchain/internal/models"
	"github.com/liftedinit/powchain/internal/output"
)

var mineConfig config.MineConfig

var MineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a chain and write it to various output formats",
	Long:  `Mine proof-of-work blocks on top of a fresh genesis block and output the chain in the specified format.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mineConfig = config.LoadMineConfigFromCLI()
		if err := mineConfig.Validate(); err != nil {
			return fmt.Errorf("invalid Mine configuration: %w", err)
		}

		slog.Debug("Command-line arguments", "mineConfig", mineConfig)
		return nil
	},
}

func init() {
	MineCmd.PersistentFlags().IntP("difficulty", "d", ledger.DefaultDifficulty, "Number of leading zero hex characters each block hash needs")
	MineCmd.PersistentFlags().UintP("blocks", "n", 2, "Number of blocks to mine after genesis")
	MineCmd.PersistentFlags().StringArray("tx", nil, "Transaction added to every mined block, as sender:receiver:amount (repeatable)")
	MineCmd.PersistentFlags().StringP("input", "i", "", "JSON file listing the blocks and transactions to mine")
	MineCmd.PersistentFlags().UintP("workers", "w", ledger.DefaultWorkers, "Number of goroutines searching for each nonce")
	MineCmd.PersistentFlags().Duration("timeout", 0, "Abort mining after this long (0 disables)")
	MineCmd.PersistentFlags().String("hash", hasher.SHA256, fmt.Sprintf("Hash algorithm (%s)", hasher.ValidAlgorithmsStr))
	MineCmd.PersistentFlags().Bool("enable-prometheus", false, "Enable Prometheus metrics server")
	MineCmd.PersistentFlags().String("prometheus-addr", "0.0.0.0:2112", "Address and port of the Prometheus metrics server")

	MineCmd.MarkFlagsMutuallyExclusive("input", "tx")

	if err := viper.BindPFlags(MineCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind MineCmd flags", "error", err)
	}

	MineCmd.AddCommand(jsonCmd)
	MineCmd.AddCommand(tsvCmd)
	MineCmd.AddCommand(tableCmd)
}

// mine builds a chain from mineConfig and streams its blocks to outputHandler.
func mine(cmd *cobra.Command, outputHandler output.OutputHandler) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mining.HandleInterrupt(ctx, cancel)

	if mineConfig.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, mineConfig.Timeout)
		defer timeoutCancel()
	}

	workload, err := loadWorkload(mineConfig)
	if err != nil {
		return err
	}

	recorder := metrics.NewMiningRecorder()
	chain, err := ledger.New(
		ledger.WithHasher(mineConfig.Hasher()),
		ledger.WithDifficulty(mineConfig.Difficulty),
		ledger.WithWorkers(int(mineConfig.Workers)),
		ledger.WithMineHook(recorder.Observe),
	)
	if err != nil {
		return fmt.Errorf("failed to create chain: %w", err)
	}

	if mineConfig.EnablePrometheus {
		server, err := metrics.CreateMetricsServer(chain, mineConfig.PrometheusAddr, recorder)
		if err != nil {
			return fmt.Errorf("failed to start Prometheus metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Warn("Failed to shut down metrics server", "error", err)
			}
		}()
	}

	return mining.Run(ctx, chain, workload, outputHandler)
}

func loadWorkload(cfg config.MineConfig) (models.Workload, error) {
	if cfg.Input != "" {
		return models.LoadWorkload(cfg.Input)
	}

	txs := make([]ledger.Transaction, 0, len(cfg.Transactions))
	for _, s := range cfg.Transactions {
		tx, err := ledger.ParseTransaction(s)
		if err != nil {
			return models.Workload{}, err
		}
		txs = append(txs, tx)
	}
	return models.GenerateWorkload(cfg.Blocks, txs), nil
}
