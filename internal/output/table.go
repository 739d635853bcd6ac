package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"

	"github.com/liftedinit/powchain/internal/ledger"
)

// TableOutputHandler renders the chain as a console table when closed.
type TableOutputHandler struct {
	w    io.Writer
	rows pterm.TableData
}

func NewTableOutputHandler(w io.Writer) *TableOutputHandler {
	return &TableOutputHandler{
		w:    w,
		rows: pterm.TableData{{"Index", "Time", "Label", "Txs", "Nonce", "Previous", "Hash"}},
	}
}

func (h *TableOutputHandler) WriteBlock(_ context.Context, block ledger.Block) error {
	h.rows = append(h.rows, []string{
		strconv.FormatUint(block.Index, 10),
		time.Unix(int64(block.Timestamp), 0).UTC().Format(time.RFC3339),
		tsvEscaper.Replace(block.Label),
		strconv.Itoa(len(block.Transactions)),
		strconv.FormatUint(block.Nonce, 10),
		shortHash(block.PreviousHash),
		block.Hash,
	})
	return nil
}

func (h *TableOutputHandler) Close() error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(h.rows).Srender()
	if err != nil {
		return errors.WithMessage(err, "failed to render chain table")
	}
	_, err = fmt.Fprintln(h.w, table)
	return err
}

func shortHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "…"
}
