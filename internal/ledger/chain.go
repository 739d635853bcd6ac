// Package ledger implements a proof-of-work, hash-linked ledger with Merkle
// commitments over each block's transactions.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/liftedinit/powchain/internal/hasher"
)

const (
	GenesisLabel        = "Genesis Block"
	GenesisPreviousHash = "0"
)

// MineHook is called after a block has been mined, before it is appended.
type MineHook func(block Block, elapsed time.Duration)

type options struct {
	hasher     hasher.Hasher
	difficulty int
	workers    int
	clock      func() time.Time
	hooks      []MineHook
}

type Option func(*options)

func WithHasher(h hasher.Hasher) Option {
	return func(o *options) { o.hasher = h }
}

// WithDifficulty sets the number of leading '0' hex characters every mined block needs.
func WithDifficulty(d int) Option {
	return func(o *options) { o.difficulty = d }
}

// WithWorkers sets how many goroutines search for a nonce in parallel.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

func WithMineHook(hook MineHook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hook) }
}

// Chain is an append-only, hash-linked sequence of blocks. It always holds at
// least the genesis block, and blocks[i].Index == i.
type Chain struct {
	// appendMu serializes AddBlock calls; mu guards blocks and is not held
	// while searching for a nonce.
	appendMu sync.Mutex
	mu       sync.RWMutex
	blocks   []Block
	hasher   hasher.Hasher
	miner    *Miner
	clock    func() time.Time
	hooks    []MineHook
}

// New creates a chain holding only the genesis block. Genesis is not mined.
func New(opts ...Option) (*Chain, error) {
	o := options{
		hasher:     hasher.Default(),
		difficulty: DefaultDifficulty,
		workers:    DefaultWorkers,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	miner, err := NewMiner(o.hasher, o.difficulty, o.workers)
	if err != nil {
		return nil, err
	}

	c := &Chain{
		hasher: o.hasher,
		miner:  miner,
		clock:  o.clock,
		hooks:  o.hooks,
	}

	ts, err := c.now(0)
	if err != nil {
		return nil, err
	}
	genesis := NewCandidate(c.hasher, 0, ts, GenesisPreviousHash, GenesisLabel, nil)
	c.blocks = []Block{genesis.seal(0, genesis.Hash())}

	slog.Debug("Created chain", "genesis", c.blocks[0].Hash, "difficulty", o.difficulty, "hash", c.hasher.Name())
	return c, nil
}

// AddBlock mines a block holding txs on top of the chain and appends it.
func (c *Chain) AddBlock(ctx context.Context, txs []Transaction) (Block, error) {
	return c.AddLabeledBlock(ctx, "", txs)
}

// AddLabeledBlock is AddBlock with a free-text label committed into the block hash.
// On any error the chain is left unchanged.
func (c *Chain) AddLabeledBlock(ctx context.Context, label string, txs []Transaction) (Block, error) {
	c.appendMu.Lock()
	defer c.appendMu.Unlock()

	c.mu.RLock()
	latest := c.blocks[len(c.blocks)-1]
	index := uint64(len(c.blocks))
	c.mu.RUnlock()

	ts, err := c.now(latest.Timestamp)
	if err != nil {
		return Block{}, err
	}

	candidate := NewCandidate(c.hasher, index, ts, latest.Hash, label, txs)

	start := time.Now()
	block, err := c.miner.Mine(ctx, candidate)
	if err != nil {
		return Block{}, fmt.Errorf("failed to mine block %d: %w", candidate.Index(), err)
	}
	elapsed := time.Since(start)

	for _, hook := range c.hooks {
		hook(block.clone(), elapsed)
	}

	c.mu.Lock()
	c.blocks = append(c.blocks, block)
	c.mu.Unlock()
	slog.Debug("Mined block", "index", block.Index, "nonce", block.Nonce, "hash", block.Hash, "elapsed", elapsed)

	return block.clone(), nil
}

// now reads the clock and rejects times before the epoch or before notBefore.
func (c *Chain) now(notBefore uint64) (uint64, error) {
	t := c.clock()
	sec := t.Unix()
	if sec < 0 {
		return 0, fmt.Errorf("%w: time %s is before the unix epoch", ErrClock, t.UTC().Format(time.RFC3339))
	}
	if uint64(sec) < notBefore {
		return 0, fmt.Errorf("%w: time went backwards (%d < %d)", ErrClock, sec, notBefore)
	}
	return uint64(sec), nil
}

// Validate reports whether every block's hash and link are intact.
func (c *Chain) Validate() bool {
	return c.Verify() == nil
}

// Verify walks the chain and returns a *ValidationError for the first
// mismatch, or nil when the chain is intact.
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return verifyBlocks(c.hasher, c.miner.Difficulty(), c.blocks)
}

func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Latest returns the most recently appended block.
func (c *Chain) Latest() Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1].clone()
}

// ByIndex returns the block at index.
func (c *Chain) ByIndex(index int) (Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.blocks) {
		return Block{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return c.blocks[index].clone(), nil
}

// Blocks returns a copy of the whole chain.
func (c *Chain) Blocks() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Block, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b.clone()
	}
	return out
}

// TransactionCount is the number of transactions across all blocks.
func (c *Chain) TransactionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, b := range c.blocks {
		n += len(b.Transactions)
	}
	return n
}

func (c *Chain) Difficulty() int { return c.miner.Difficulty() }

func (c *Chain) Hasher() hasher.Hasher { return c.hasher }

// HashAttempts is the number of hashes computed while mining this chain.
func (c *Chain) HashAttempts() uint64 { return c.miner.Attempts() }
