package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/liftedinit/powchain/internal/hasher"
	"github.com/liftedinit/powchain/internal/ledger"
	"github.com/liftedinit/powchain/internal/models"
)

const (
	BlockDir = "block"
	TxDir    = "txs"

	maxConcurrentWrites = 8
)

type JSONOutputHandler struct {
	hasher   hasher.Hasher
	blockDir string
	txDir    string
}

func NewJSONOutputHandler(outDir string, h hasher.Hasher) (*JSONOutputHandler, error) {
	blockDir := filepath.Join(outDir, BlockDir)
	txDir := filepath.Join(outDir, TxDir)

	err := os.MkdirAll(blockDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create blocks directory: %w", err)
	}

	err = os.MkdirAll(txDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactions directory: %w", err)
	}

	return &JSONOutputHandler{
		hasher:   h,
		blockDir: blockDir,
		txDir:    txDir,
	}, nil
}

// BlockFileName is the name of the JSON file holding the block at index.
func BlockFileName(index uint64) string {
	return fmt.Sprintf("block_%010d.json", index)
}

// TransactionFileName is the name of the JSON file holding one transaction.
func TransactionFileName(blockIndex uint64, position int) string {
	return fmt.Sprintf("tx_%010d_%04d.json", blockIndex, position)
}

func (h *JSONOutputHandler) WriteBlock(ctx context.Context, block ledger.Block) error {
	if err := h.writeBlock(block); err != nil {
		return fmt.Errorf("failed to write block: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentWrites)
	for _, record := range models.TransactionRecords(h.hasher, block) {
		eg.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := h.writeTransaction(record); err != nil {
				return fmt.Errorf("failed to write transaction: %w", err)
			}
			return nil
		})
	}

	return eg.Wait()
}

func (h *JSONOutputHandler) writeBlock(block ledger.Block) error {
	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}
	filePath := filepath.Join(h.blockDir, BlockFileName(block.Index))
	return os.WriteFile(filePath, data, 0644)
}

func (h *JSONOutputHandler) writeTransaction(record models.TransactionRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	filePath := filepath.Join(h.txDir, TransactionFileName(record.BlockIndex, record.Position))
	return os.WriteFile(filePath, data, 0644)
}

func (h *JSONOutputHandler) Close() error {
	return nil
}
