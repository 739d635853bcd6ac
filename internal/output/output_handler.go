package output

import (
	"context"

	"github.com/liftedinit/powchain/internal/ledger"
)

// OutputHandler receives mined blocks in chain order.
type OutputHandler interface {
	WriteBlock(ctx context.Context, block ledger.Block) error
	Close() error
}
