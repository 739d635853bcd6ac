package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/liftedinit/powchain/internal/hasher"
	"github.com/liftedinit/powchain/internal/ledger"
	"github.com/liftedinit/powchain/internal/output"
)

// LoadBlocks reads the blocks of a JSON export back in index order.
func LoadBlocks(inputDir string) ([]ledger.Block, error) {
	blocksDir := filepath.Join(inputDir, output.BlockDir)
	entries, err := os.ReadDir(blocksDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read blocks directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "block_") || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	// Zero-padded names sort in index order.
	sort.Strings(names)

	blocks := make([]ledger.Block, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(blocksDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read block file '%s': %w", name, err)
		}

		var block ledger.Block
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, fmt.Errorf("failed to parse block file '%s': %w", name, err)
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// ExportTSV converts the JSON export in inputDir into blocks.tsv and
// transactions.tsv under outputDir. It returns the number of blocks written.
func ExportTSV(ctx context.Context, inputDir, outputDir string, h hasher.Hasher) (int, error) {
	blocks, err := LoadBlocks(inputDir)
	if err != nil {
		return 0, err
	}

	handler, err := output.NewTSVOutputHandler(outputDir, h)
	if err != nil {
		return 0, fmt.Errorf("failed to create TSV output handler: %w", err)
	}

	for _, block := range blocks {
		err := ctx.Err()
		if err == nil {
			err = handler.WriteBlock(ctx, block)
		}
		if err != nil {
			if closeErr := handler.Close(); closeErr != nil {
				slog.Warn("Failed to close TSV output", "error", closeErr)
			}
			return 0, fmt.Errorf("failed to export block %d: %w", block.Index, err)
		}
	}

	if err := handler.Close(); err != nil {
		return 0, fmt.Errorf("failed to close TSV output: %w", err)
	}
	return len(blocks), nil
}
