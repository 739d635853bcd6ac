package mining

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/liftedinit/powchain/internal/ledger"
	"github.com/liftedinit/powchain/internal/models"
	"github.com/liftedinit/powchain/internal/output"
)

// Run writes the genesis block, then mines every block of the workload onto
// chain and writes each one to outputHandler as soon as it is appended. The
// chain is verified once all blocks are mined.
func Run(ctx context.Context, chain *ledger.Chain, workload models.Workload, outputHandler output.OutputHandler) error {
	genesis, err := chain.ByIndex(0)
	if err != nil {
		return fmt.Errorf("failed to read genesis block: %w", err)
	}
	if err := outputHandler.WriteBlock(ctx, genesis); err != nil {
		return fmt.Errorf("failed to write genesis block: %w", err)
	}

	total := len(workload.Blocks)
	slog.Info("Starting mining", "blocks", total, "transactions", workload.TransactionCount(), "difficulty", chain.Difficulty(), "hash", chain.Hasher().Name())

	var bar *progressbar.ProgressBar
	if total > 1 {
		bar = progressbar.NewOptions(
			total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("Mining blocks..."),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		if err := bar.RenderBlank(); err != nil {
			return fmt.Errorf("failed to render progress bar: %w", err)
		}
	}

	for _, req := range workload.Blocks {
		if ctx.Err() != nil {
			slog.Info("Mining cancelled by user")
			return fmt.Errorf("%w: %w", ledger.ErrMiningCanceled, ctx.Err())
		}

		block, err := chain.AddLabeledBlock(ctx, req.Label, req.Transactions)
		if err != nil {
			return err
		}
		slog.Debug("Block mined", "index", block.Index, "nonce", block.Nonce, "hash", block.Hash)

		if err := outputHandler.WriteBlock(ctx, block); err != nil {
			return fmt.Errorf("failed to write block %d: %w", block.Index, err)
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	if bar != nil {
		if err := bar.Finish(); err != nil {
			return fmt.Errorf("failed to finish progress bar: %w", err)
		}
	}

	if err := chain.Verify(); err != nil {
		return fmt.Errorf("mined chain failed verification: %w", err)
	}

	latest := chain.Latest()
	slog.Info("Mining complete", "height", chain.Len(), "tip", latest.Hash, "hash_attempts", chain.HashAttempts())
	return nil
}

// HandleInterrupt cancels the mining context on SIGINT or SIGTERM. It stops
// listening for signals once ctx is done.
func HandleInterrupt(ctx context.Context, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case <-c:
			slog.Info("Received interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
}
