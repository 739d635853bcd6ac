package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftedinit/powchain/internal/hasher"
)

// steppingClock returns a clock that advances one second per call.
func steppingClock(start int64) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := time.Unix(now, 0)
		now++
		return t
	}
}

func newTestChain(t *testing.T, n int, opts ...Option) *Chain {
	t.Helper()

	opts = append([]Option{WithClock(steppingClock(1700000000))}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		_, err := c.AddBlock(context.Background(), []Transaction{
			tx("alice", "bob", "1.5"),
			tx("bob", "carol", decimal.NewFromInt(int64(i)).String()),
			tx("carol", "alice", "0.01"),
		})
		require.NoError(t, err)
	}
	return c
}

func requireInvalidAt(t *testing.T, c *Chain, index uint64) {
	t.Helper()

	assert.False(t, c.Validate())
	var verr *ValidationError
	require.True(t, errors.As(c.Verify(), &verr))
	assert.Equal(t, index, verr.Index)
}

func TestNewChain(t *testing.T) {
	c, err := New(WithClock(func() time.Time { return time.Unix(1700000000, 0) }))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	genesis := c.Latest()
	assert.Equal(t, uint64(0), genesis.Index)
	assert.Equal(t, uint64(1700000000), genesis.Timestamp)
	assert.Equal(t, GenesisPreviousHash, genesis.PreviousHash)
	assert.Equal(t, GenesisLabel, genesis.Label)
	assert.Equal(t, uint64(0), genesis.Nonce)
	assert.Empty(t, genesis.Transactions)
	assert.Equal(t, genesis.Hash, genesis.CalculateHash(c.Hasher()))
	assert.Equal(t, uint64(0), c.HashAttempts())
	assert.True(t, c.Validate())
	assert.Equal(t, DefaultDifficulty, c.Difficulty())
}

func TestNewChainInvalidDifficulty(t *testing.T) {
	_, err := New(WithDifficulty(65))
	assert.ErrorIs(t, err, ErrInvalidDifficulty)

	_, err = New(WithDifficulty(-2))
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestNewChainClockBeforeEpoch(t *testing.T) {
	_, err := New(WithClock(func() time.Time { return time.Unix(-10, 0) }))
	assert.ErrorIs(t, err, ErrClock)
}

func TestAddEmptyBlock(t *testing.T) {
	c, err := New(WithDifficulty(2))
	require.NoError(t, err)

	block, err := c.AddBlock(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(block.Hash, "00"), block.Hash)
	assert.Equal(t, uint64(1), block.Index)
	assert.Equal(t, c.Hasher().Empty(), block.MerkleRoot)
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Validate())
	assert.NoError(t, c.Verify())
}

func TestAddBlockLinks(t *testing.T) {
	c := newTestChain(t, 3)
	blocks := c.Blocks()
	require.Len(t, blocks, 4)

	for i := 1; i < len(blocks); i++ {
		assert.Equal(t, uint64(i), blocks[i].Index)
		assert.Equal(t, blocks[i-1].Hash, blocks[i].PreviousHash)
		assert.True(t, strings.HasPrefix(blocks[i].Hash, "00"))
		assert.Greater(t, blocks[i].Timestamp, blocks[i-1].Timestamp)
	}
	assert.Equal(t, 9, c.TransactionCount())
	assert.Greater(t, c.HashAttempts(), uint64(0))
}

func TestAddLabeledBlock(t *testing.T) {
	c := newTestChain(t, 0)
	block, err := c.AddLabeledBlock(context.Background(), "Block 1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Block 1", block.Label)
	assert.True(t, c.Validate())

	c.blocks[1].Label = "Block 2"
	requireInvalidAt(t, c, 1)
}

func TestValidateFreshChains(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		c := newTestChain(t, n)
		assert.True(t, c.Validate(), "chain with %d blocks", n)
	}
}

func TestValidateParallelMinedChain(t *testing.T) {
	c := newTestChain(t, 3, WithWorkers(4), WithDifficulty(3))
	assert.True(t, c.Validate())
	for _, b := range c.Blocks()[1:] {
		assert.True(t, strings.HasPrefix(b.Hash, "000"))
	}
}

func TestValidateOtherHashers(t *testing.T) {
	for _, name := range []string{hasher.SHA3256, hasher.BLAKE2b256} {
		h, err := hasher.New(name)
		require.NoError(t, err)

		c := newTestChain(t, 2, WithHasher(h))
		assert.True(t, c.Validate(), name)
		assert.Error(t, VerifyBlocks(hasher.Default(), c.Difficulty(), c.Blocks()), name)
	}
}

func TestTamperTransactions(t *testing.T) {
	c := newTestChain(t, 3)
	c.blocks[2].Transactions[1].Amount = decimal.NewFromInt(1000)
	requireInvalidAt(t, c, 2)
}

func TestTamperRemoveTransaction(t *testing.T) {
	c := newTestChain(t, 3)
	c.blocks[1].Transactions = c.blocks[1].Transactions[:2]
	requireInvalidAt(t, c, 1)
}

func TestTamperTimestamp(t *testing.T) {
	c := newTestChain(t, 3)
	c.blocks[3].Timestamp++
	requireInvalidAt(t, c, 3)
}

func TestTamperNonce(t *testing.T) {
	c := newTestChain(t, 3)
	c.blocks[1].Nonce++
	requireInvalidAt(t, c, 1)
}

func TestTamperHash(t *testing.T) {
	c := newTestChain(t, 2)
	c.blocks[1].Hash = "tamperedhash"
	requireInvalidAt(t, c, 1)
}

func TestTamperIndex(t *testing.T) {
	c := newTestChain(t, 2)
	c.blocks[2].Index = 5
	requireInvalidAt(t, c, 2)
}

func TestBrokenLink(t *testing.T) {
	for i := 1; i <= 3; i++ {
		c := newTestChain(t, 3)
		c.blocks[i].PreviousHash = "wronghash"
		assert.False(t, c.Validate(), "block %d", i)
	}
}

func TestBrokenLinkRecomputedHash(t *testing.T) {
	c := newTestChain(t, 3)

	// Re-hashing the edited block hides the hash mismatch but not the broken link.
	c.blocks[2].PreviousHash = strings.Repeat("0", 64)
	c.blocks[2].Hash = c.blocks[2].CalculateHash(c.hasher)
	err := c.Verify()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, uint64(2), verr.Index)
	assert.Contains(t, verr.Reason, "invalid previous hash")
}

func TestDeletedBlock(t *testing.T) {
	c := newTestChain(t, 4)
	c.blocks = append(c.blocks[:2], c.blocks[3:]...)
	requireInvalidAt(t, c, 2)
}

func TestGenesisOnlyChainIsTriviallyValid(t *testing.T) {
	c := newTestChain(t, 0)
	c.blocks[0].Hash = "anything"
	assert.True(t, c.Validate())
}

func TestTamperGenesis(t *testing.T) {
	c := newTestChain(t, 2)
	c.blocks[0].Timestamp += 1000
	c.blocks[0].Label = "forged genesis"
	requireInvalidAt(t, c, 0)
}

func TestGenesisLinkAndIndex(t *testing.T) {
	c := newTestChain(t, 1)
	c.blocks[0].PreviousHash = "1"
	requireInvalidAt(t, c, 0)

	c = newTestChain(t, 1)
	c.blocks[0].Index = 1
	requireInvalidAt(t, c, 0)
}

func TestBlocksReturnsCopies(t *testing.T) {
	c := newTestChain(t, 2)

	blocks := c.Blocks()
	blocks[1].Nonce = 42
	blocks[1].Transactions[0].Sender = "mallory"

	latest := c.Latest()
	latest.Transactions[0].Receiver = "mallory"

	b, err := c.ByIndex(1)
	require.NoError(t, err)
	b.Hash = "changed"

	assert.True(t, c.Validate())
	assert.Equal(t, "alice", c.blocks[1].Transactions[0].Sender)
	assert.Equal(t, "bob", c.blocks[2].Transactions[0].Receiver)
}

func TestByIndex(t *testing.T) {
	c := newTestChain(t, 1)

	b, err := c.ByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), b.Index)

	_, err = c.ByIndex(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = c.ByIndex(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAddBlockRetrogradeClock(t *testing.T) {
	times := []int64{1700000010, 1700000000}
	var calls int
	clock := func() time.Time {
		ts := times[calls]
		calls++
		return time.Unix(ts, 0)
	}

	c, err := New(WithClock(clock))
	require.NoError(t, err)

	_, err = c.AddBlock(context.Background(), nil)
	assert.ErrorIs(t, err, ErrClock)
	assert.Equal(t, 1, c.Len())
}

func TestAddBlockCanceled(t *testing.T) {
	c, err := New(WithDifficulty(64))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.AddBlock(ctx, nil)
	assert.ErrorIs(t, err, ErrMiningCanceled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, c.Len())
}

func TestMineHook(t *testing.T) {
	var seen []uint64
	c := newTestChain(t, 3, WithMineHook(func(b Block, elapsed time.Duration) {
		seen = append(seen, b.Index)
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	}))
	assert.Equal(t, []uint64{1, 2, 3}, seen)
	assert.True(t, c.Validate())
}

func TestVerifyBlocks(t *testing.T) {
	c := newTestChain(t, 2)
	h := c.Hasher()

	assert.NoError(t, VerifyBlocks(h, 2, c.Blocks()))
	assert.ErrorIs(t, VerifyBlocks(h, 2, nil), ErrEmptyChain)
	assert.ErrorIs(t, VerifyBlocks(h, 99, c.Blocks()), ErrInvalidDifficulty)

	// Blocks mined at difficulty 2 rarely reach 5 leading zeros.
	blocks := c.Blocks()
	err := VerifyBlocks(h, 5, blocks)
	if !MeetsDifficulty(blocks[1].Hash, 5) {
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, uint64(1), verr.Index)
		assert.Contains(t, verr.Error(), "does not meet difficulty 5")
	}
}

func TestReadersDuringMining(t *testing.T) {
	c := newTestChain(t, 0, WithDifficulty(64))

	ctx, cancel := context.WithCancel(context.Background())
	mined := make(chan error, 1)
	go func() {
		_, err := c.AddBlock(ctx, nil)
		mined <- err
	}()
	defer func() {
		cancel()
		assert.ErrorIs(t, <-mined, ErrMiningCanceled)
		assert.Equal(t, 1, c.Len())
	}()

	require.Eventually(t, func() bool { return c.HashAttempts() > 0 }, 2*time.Second, 10*time.Millisecond)

	read := make(chan struct{})
	go func() {
		defer close(read)
		_ = c.Len()
		_ = c.Verify()
		_ = c.TransactionCount()
		_ = c.Blocks()
	}()

	select {
	case <-read:
	case <-time.After(time.Second):
		t.Fatal("readers blocked while a block was being mined")
	}
}

func TestConcurrentReaders(t *testing.T) {
	c := newTestChain(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = c.Validate()
				_ = c.Len()
				_ = c.TransactionCount()
			}
		}()
	}
	for i := 0; i < 3; i++ {
		_, err := c.AddBlock(context.Background(), []Transaction{tx("alice", "bob", "1")})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Len())
	assert.True(t, c.Validate())
}
