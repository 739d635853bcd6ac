package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/liftedinit/powchain/internal/hasher"
)

const (
	DefaultDifficulty = 2
	DefaultWorkers    = 1

	// cancelCheckInterval is how many nonces a worker tries between context checks.
	cancelCheckInterval = 1024
)

// ValidateDifficulty rejects difficulties no digest from h can ever satisfy.
func ValidateDifficulty(h hasher.Hasher, difficulty int) error {
	if difficulty < 0 || difficulty > h.HexLen() {
		return fmt.Errorf("%w: %d is outside [0, %d]", ErrInvalidDifficulty, difficulty, h.HexLen())
	}
	return nil
}

// MeetsDifficulty reports whether hash starts with difficulty '0' characters.
func MeetsDifficulty(hash string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(hash) < difficulty {
		return false
	}
	return strings.Count(hash[:difficulty], "0") == difficulty
}

// Miner searches the nonce space of a Candidate for a hash meeting its difficulty.
type Miner struct {
	hasher     hasher.Hasher
	difficulty int
	workers    int
	attempts   atomic.Uint64
}

// NewMiner validates difficulty against h before any mining can start.
func NewMiner(h hasher.Hasher, difficulty, workers int) (*Miner, error) {
	if err := ValidateDifficulty(h, difficulty); err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", workers)
	}
	return &Miner{hasher: h, difficulty: difficulty, workers: workers}, nil
}

func (m *Miner) Difficulty() int { return m.difficulty }

func (m *Miner) Workers() int { return m.workers }

// Attempts is the total number of hashes computed by this miner. It is
// updated while a search is running.
func (m *Miner) Attempts() uint64 { return m.attempts.Load() }

// Mine finds a nonce for c and returns the sealed Block. The candidate must
// have been built with the same hasher as the miner. Mining stops early only
// when ctx is done.
func (m *Miner) Mine(ctx context.Context, c *Candidate) (Block, error) {
	if c.hasher.Name() != m.hasher.Name() {
		return Block{}, fmt.Errorf("candidate hashed with %s, miner uses %s", c.hasher.Name(), m.hasher.Name())
	}
	if m.workers == 1 {
		return m.mineSerial(ctx, c)
	}
	return m.mineParallel(ctx, c)
}

func (m *Miner) mineSerial(ctx context.Context, c *Candidate) (Block, error) {
	var pending uint64
	defer func() { m.attempts.Add(pending) }()

	for nonce := uint64(0); ; nonce++ {
		if nonce%cancelCheckInterval == 0 {
			m.attempts.Add(pending)
			pending = 0
			if ctx.Err() != nil {
				return Block{}, fmt.Errorf("%w: %w", ErrMiningCanceled, ctx.Err())
			}
		}
		c.nonce = nonce
		hash := c.hashWithNonce(nonce)
		pending++
		if MeetsDifficulty(hash, m.difficulty) {
			return c.seal(nonce, hash), nil
		}
	}
}

type solution struct {
	nonce uint64
	hash  string
}

// mineParallel splits the nonce space by stride: worker w tries w, w+W, w+2W...
// The first worker to publish a solution wins and the rest stop.
func (m *Miner) mineParallel(ctx context.Context, c *Candidate) (Block, error) {
	var (
		once   sync.Once
		winner solution
		found  atomic.Bool
	)

	eg, egCtx := errgroup.WithContext(ctx)
	stride := uint64(m.workers)

	for w := 0; w < m.workers; w++ {
		start := uint64(w)
		eg.Go(func() error {
			var tried, pending uint64
			defer func() { m.attempts.Add(pending) }()

			for nonce := start; ; nonce += stride {
				if tried%cancelCheckInterval == 0 {
					m.attempts.Add(pending)
					pending = 0
					if found.Load() {
						return nil
					}
					if egCtx.Err() != nil {
						return egCtx.Err()
					}
				}
				hash := c.hashWithNonce(nonce)
				tried++
				pending++
				if MeetsDifficulty(hash, m.difficulty) {
					once.Do(func() {
						winner = solution{nonce: nonce, hash: hash}
						found.Store(true)
					})
					return nil
				}
			}
		})
	}

	err := eg.Wait()
	if found.Load() {
		return c.seal(winner.nonce, winner.hash), nil
	}
	if err == nil {
		err = ctx.Err()
	}
	return Block{}, fmt.Errorf("%w: %w", ErrMiningCanceled, err)
}
