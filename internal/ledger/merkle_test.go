package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftedinit/powchain/internal/hasher"
)

func tx(sender, receiver, amount string) Transaction {
	return NewTransaction(sender, receiver, decimal.RequireFromString(amount))
}

func TestMerkleRootEmpty(t *testing.T) {
	h := hasher.Default()
	assert.Equal(t, h.Empty(), MerkleRoot(h, nil))
	assert.Equal(t, h.Empty(), MerkleRoot(h, []Transaction{}))
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	h := hasher.Default()
	a := tx("alice", "bob", "1.5")
	assert.Equal(t, LeafHash(h, a), MerkleRoot(h, []Transaction{a}))
}

func TestMerkleRootDeterministic(t *testing.T) {
	h := hasher.Default()
	txs := []Transaction{tx("alice", "bob", "1.5"), tx("bob", "carol", "2"), tx("carol", "dave", "0.25")}

	first := MerkleRoot(h, txs)
	second := MerkleRoot(h, []Transaction{tx("alice", "bob", "1.5"), tx("bob", "carol", "2"), tx("carol", "dave", "0.25")})
	assert.Equal(t, first, second)
	assert.Len(t, first, h.HexLen())
}

func TestMerkleRootOrderMatters(t *testing.T) {
	h := hasher.Default()
	a, b := tx("alice", "bob", "1"), tx("bob", "alice", "1")
	assert.NotEqual(t, MerkleRoot(h, []Transaction{a, b}), MerkleRoot(h, []Transaction{b, a}))
}

func TestMerkleRootCarriesOddLeafForward(t *testing.T) {
	h := hasher.Default()
	same := tx("alice", "bob", "10")
	txs := []Transaction{same, same, same}

	leaf := LeafHash(h, same)
	combined := h.DigestString(leaf + leaf)
	expected := h.DigestString(combined + leaf)

	root := MerkleRoot(h, txs)
	require.Equal(t, expected, root)

	// Duplicating the odd leaf instead would give a different root.
	assert.NotEqual(t, h.DigestString(combined+combined), root)
}

func TestMerkleRootFiveLeaves(t *testing.T) {
	h := hasher.Default()
	txs := []Transaction{
		tx("a", "b", "1"), tx("b", "c", "2"), tx("c", "d", "3"), tx("d", "e", "4"), tx("e", "f", "5"),
	}
	l := make([]string, len(txs))
	for i, x := range txs {
		l[i] = LeafHash(h, x)
	}

	level1 := []string{h.DigestString(l[0] + l[1]), h.DigestString(l[2] + l[3]), l[4]}
	level2 := []string{h.DigestString(level1[0] + level1[1]), level1[2]}
	assert.Equal(t, h.DigestString(level2[0]+level2[1]), MerkleRoot(h, txs))
}

func TestLeafHashCanonicalAmount(t *testing.T) {
	h := hasher.Default()
	assert.Equal(t, LeafHash(h, tx("alice", "bob", "1.50")), LeafHash(h, tx("alice", "bob", "1.5")))
	assert.NotEqual(t, LeafHash(h, tx("alice", "bob", "1.5")), LeafHash(h, tx("alice", "bob", "1.05")))
}

func TestLeafHashFieldBoundaries(t *testing.T) {
	h := hasher.Default()
	assert.NotEqual(t, LeafHash(h, tx("ab", "c", "1")), LeafHash(h, tx("a", "bc", "1")))
}

func TestMerkleRootDependsOnHasher(t *testing.T) {
	sha3, err := hasher.New(hasher.SHA3256)
	require.NoError(t, err)

	txs := []Transaction{tx("alice", "bob", "1")}
	assert.NotEqual(t, MerkleRoot(hasher.Default(), txs), MerkleRoot(sha3, txs))
}
