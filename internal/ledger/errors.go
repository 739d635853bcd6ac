package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDifficulty  = errors.New("invalid difficulty")
	ErrClock              = errors.New("clock error")
	ErrMiningCanceled     = errors.New("mining canceled")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrEmptyChain         = errors.New("empty chain")
)

// ValidationError reports the first block that failed chain validation.
type ValidationError struct {
	Index  uint64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("block %d invalid: %s", e.Index, e.Reason)
}
