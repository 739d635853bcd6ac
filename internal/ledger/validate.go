package ledger

import (
	"fmt"

	"github.com/liftedinit/powchain/internal/hasher"
)

// VerifyBlocks validates a bare block sequence, such as one read back from an
// export, using the same checks as Chain.Verify.
func VerifyBlocks(h hasher.Hasher, difficulty int, blocks []Block) error {
	if err := ValidateDifficulty(h, difficulty); err != nil {
		return err
	}
	if len(blocks) == 0 {
		return ErrEmptyChain
	}
	return verifyBlocks(h, difficulty, blocks)
}

// verifyBlocks checks genesis and, for every later block, the recomputed hash
// against the stored one and the previous-hash link. Stored hashes are never
// trusted. Sequences shorter than two blocks are valid.
func verifyBlocks(h hasher.Hasher, difficulty int, blocks []Block) error {
	if len(blocks) < 2 {
		return nil
	}

	if err := verifyGenesis(h, blocks[0]); err != nil {
		return err
	}

	for i := 1; i < len(blocks); i++ {
		current, previous := blocks[i], blocks[i-1]

		if current.Index != uint64(i) {
			return &ValidationError{Index: uint64(i), Reason: fmt.Sprintf("invalid index: expected %d, got %d", i, current.Index)}
		}

		if expected := current.CalculateHash(h); current.Hash != expected {
			return &ValidationError{Index: uint64(i), Reason: fmt.Sprintf("invalid hash: expected %s, got %s", expected, current.Hash)}
		}

		if current.PreviousHash != previous.Hash {
			return &ValidationError{Index: uint64(i), Reason: fmt.Sprintf("invalid previous hash: expected %s, got %s", previous.Hash, current.PreviousHash)}
		}

		if !MeetsDifficulty(current.Hash, difficulty) {
			return &ValidationError{Index: uint64(i), Reason: fmt.Sprintf("hash %s does not meet difficulty %d", current.Hash, difficulty)}
		}
	}

	return nil
}

// verifyGenesis checks the block every link ultimately rests on. Genesis is
// not mined, so no difficulty applies.
func verifyGenesis(h hasher.Hasher, genesis Block) error {
	if genesis.Index != 0 {
		return &ValidationError{Index: 0, Reason: fmt.Sprintf("invalid index: expected 0, got %d", genesis.Index)}
	}
	if genesis.PreviousHash != GenesisPreviousHash {
		return &ValidationError{Index: 0, Reason: fmt.Sprintf("invalid previous hash: expected %s, got %s", GenesisPreviousHash, genesis.PreviousHash)}
	}
	if expected := genesis.CalculateHash(h); genesis.Hash != expected {
		return &ValidationError{Index: 0, Reason: fmt.Sprintf("invalid hash: expected %s, got %s", expected, genesis.Hash)}
	}
	return nil
}
