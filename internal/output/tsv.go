package output

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/liftedinit/powchain/internal/hasher"
	"github.com/liftedinit/powchain/internal/ledger"
	"github.com/liftedinit/powchain/internal/models"
)

type TSVOutputHandler struct {
	hasher      hasher.Hasher
	blockFile   *os.File
	txFile      *os.File
	blockWriter *bufio.Writer
	txWriter    *bufio.Writer
}

const (
	BlocksTSV = "blocks.tsv"
	TxsTSV    = "transactions.tsv"
)

var tsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func NewTSVOutputHandler(outDir string, h hasher.Hasher) (*TSVOutputHandler, error) {
	err := os.MkdirAll(outDir, 0755)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create output directory")
	}

	blockFile, err := os.Create(filepath.Join(outDir, BlocksTSV))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create blocks TSV file")
	}

	txFile, err := os.Create(filepath.Join(outDir, TxsTSV))
	if err != nil {
		blockFile.Close()
		return nil, errors.WithMessage(err, "failed to create transactions TSV file")
	}

	return &TSVOutputHandler{
		hasher:      h,
		blockFile:   blockFile,
		txFile:      txFile,
		blockWriter: bufio.NewWriter(blockFile),
		txWriter:    bufio.NewWriter(txFile),
	}, nil
}

// WriteBlock writes one line to blocks.tsv:
// index, timestamp, label, previous hash, merkle root, hash, nonce, transaction count.
// Each transaction becomes one line of transactions.tsv:
// block index, position, leaf hash, sender, receiver, amount.
func (h *TSVOutputHandler) WriteBlock(_ context.Context, block ledger.Block) error {
	line := fmt.Sprintf("%d\t%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
		block.Index,
		block.Timestamp,
		tsvEscaper.Replace(block.Label),
		block.PreviousHash,
		block.MerkleRoot,
		block.Hash,
		block.Nonce,
		len(block.Transactions),
	)
	if _, err := h.blockWriter.WriteString(line); err != nil {
		return errors.WithMessage(err, "failed to write block")
	}

	for _, r := range models.TransactionRecords(h.hasher, block) {
		line := fmt.Sprintf("%d\t%d\t%s\t%s\t%s\t%s\n",
			r.BlockIndex,
			r.Position,
			r.LeafHash,
			tsvEscaper.Replace(r.Sender),
			tsvEscaper.Replace(r.Receiver),
			r.Amount.String(),
		)
		if _, err := h.txWriter.WriteString(line); err != nil {
			return errors.WithMessage(err, "failed to write transaction")
		}
	}
	return nil
}

func (h *TSVOutputHandler) Close() error {
	if err := h.blockWriter.Flush(); err != nil {
		slog.Error("failed to flush block writer", "errors", err)
		return err
	}
	if err := h.txWriter.Flush(); err != nil {
		slog.Error("failed to flush tx writer", "errors", err)
		return err
	}
	if err := h.blockFile.Close(); err != nil {
		slog.Error("failed to close block file", "errors", err)
		return err
	}
	if err := h.txFile.Close(); err != nil {
		slog.Error("failed to close tx file", "errors", err)
		return err
	}
	return nil
}
