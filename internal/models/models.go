package models

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/liftedinit/powchain/internal/hasher"
	"github.com/liftedinit/powchain/internal/ledger"
)

// BlockRequest describes one block to mine.
type BlockRequest struct {
	Label        string               `json:"label"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// Workload is the ordered list of blocks a mine run appends after genesis.
type Workload struct {
	Blocks []BlockRequest `json:"blocks"`
}

// LoadWorkload reads a workload from a JSON file.
func LoadWorkload(path string) (Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Workload{}, fmt.Errorf("failed to read workload: %w", err)
	}

	var w Workload
	if err := json.Unmarshal(data, &w); err != nil {
		return Workload{}, fmt.Errorf("failed to parse workload %s: %w", path, err)
	}

	for i, b := range w.Blocks {
		for j, tx := range b.Transactions {
			if err := tx.Validate(); err != nil {
				return Workload{}, fmt.Errorf("block %d transaction %d: %w", i, j, err)
			}
		}
	}

	return w, nil
}

// GenerateWorkload builds n blocks labelled "Block 1".."Block n", each holding txs.
func GenerateWorkload(n uint, txs []ledger.Transaction) Workload {
	w := Workload{Blocks: make([]BlockRequest, 0, n)}
	for i := uint(1); i <= n; i++ {
		w.Blocks = append(w.Blocks, BlockRequest{
			Label:        fmt.Sprintf("Block %d", i),
			Transactions: txs,
		})
	}
	return w
}

// TransactionCount is the number of transactions across all requested blocks.
func (w Workload) TransactionCount() int {
	n := 0
	for _, b := range w.Blocks {
		n += len(b.Transactions)
	}
	return n
}

// TransactionRecord is a transaction as written by the output handlers,
// located by its block and position and identified by its Merkle leaf hash.
type TransactionRecord struct {
	BlockIndex uint64 `json:"block_index"`
	Position   int    `json:"position"`
	LeafHash   string `json:"leaf_hash"`
	ledger.Transaction
}

// TransactionRecords flattens the transactions of block into records.
func TransactionRecords(h hasher.Hasher, block ledger.Block) []TransactionRecord {
	records := make([]TransactionRecord, len(block.Transactions))
	for i, tx := range block.Transactions {
		records[i] = TransactionRecord{
			BlockIndex:  block.Index,
			Position:    i,
			LeafHash:    ledger.LeafHash(h, tx),
			Transaction: tx,
		}
	}
	return records
}
