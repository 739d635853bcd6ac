package ledger

import (
	"fmt"
	"strconv"

	"github.com/liftedinit/powchain/internal/hasher"
)

// Block is a mined ledger entry. Blocks handed out by a Chain are copies;
// changing one never affects the chain it came from.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    uint64        `json:"timestamp"`
	Label        string        `json:"label,omitempty"`
	Transactions []Transaction `json:"transactions"`
	PreviousHash string        `json:"previous_hash"`
	MerkleRoot   string        `json:"merkle_root"`
	Hash         string        `json:"hash"`
	Nonce        uint64        `json:"nonce"`
}

// CalculateHash recomputes the content hash from the block's fields. The
// Merkle root is derived from the transactions; the stored MerkleRoot and
// Hash are ignored.
func (b Block) CalculateHash(h hasher.Hasher) string {
	prefix := headerPrefix(b.Index, b.Timestamp, b.PreviousHash, MerkleRoot(h, b.Transactions), b.Label)
	return h.Digest(strconv.AppendUint(prefix, b.Nonce, 10))
}

func (b Block) clone() Block {
	b.Transactions = cloneTransactions(b.Transactions)
	return b
}

// Candidate is a block that has not been mined yet. Only a Miner turns a
// Candidate into a Block.
type Candidate struct {
	hasher       hasher.Hasher
	index        uint64
	timestamp    uint64
	label        string
	transactions []Transaction
	previousHash string
	merkleRoot   string
	prefix       []byte
	nonce        uint64
	hash         string
}

// NewCandidate builds an unmined block with nonce 0 and its initial hash.
func NewCandidate(h hasher.Hasher, index, timestamp uint64, previousHash, label string, txs []Transaction) *Candidate {
	txs = cloneTransactions(txs)
	merkleRoot := MerkleRoot(h, txs)
	c := &Candidate{
		hasher:       h,
		index:        index,
		timestamp:    timestamp,
		label:        label,
		transactions: txs,
		previousHash: previousHash,
		merkleRoot:   merkleRoot,
		prefix:       headerPrefix(index, timestamp, previousHash, merkleRoot, label),
	}
	c.hash = c.hashWithNonce(0)
	return c
}

func (c *Candidate) Index() uint64 { return c.index }
func (c *Candidate) Timestamp() uint64 { return c.timestamp }
func (c *Candidate) PreviousHash() string { return c.previousHash }
func (c *Candidate) MerkleRoot() string { return c.merkleRoot }
func (c *Candidate) Nonce() uint64 { return c.nonce }
func (c *Candidate) Hash() string { return c.hash }

// CalculateHash recomputes the hash for the candidate's current nonce.
func (c *Candidate) CalculateHash() string {
	return c.hashWithNonce(c.nonce)
}

func (c *Candidate) hashWithNonce(nonce uint64) string {
	buf := make([]byte, len(c.prefix), len(c.prefix)+20)
	copy(buf, c.prefix)
	return c.hasher.Digest(strconv.AppendUint(buf, nonce, 10))
}

// seal freezes the candidate at nonce into a Block.
func (c *Candidate) seal(nonce uint64, hash string) Block {
	c.nonce = nonce
	c.hash = hash
	return Block{
		Index:        c.index,
		Timestamp:    c.timestamp,
		Label:        c.label,
		Transactions: cloneTransactions(c.transactions),
		PreviousHash: c.previousHash,
		MerkleRoot:   c.merkleRoot,
		Hash:         hash,
		Nonce:        nonce,
	}
}

// headerPrefix is everything hashed before the nonce.
func headerPrefix(index, timestamp uint64, previousHash, merkleRoot, label string) []byte {
	return []byte(fmt.Sprintf("%d:%d:%s:%s:%q:", index, timestamp, previousHash, merkleRoot, label))
}
