package ledger

import "github.com/liftedinit/powchain/internal/hasher"

// LeafHash is the Merkle leaf for a single transaction.
func LeafHash(h hasher.Hasher, tx Transaction) string {
	return h.Digest(tx.canonical())
}

// MerkleRoot folds txs into a single commitment. Adjacent hashes are paired
// left to right and the hex concatenation of each pair is hashed; an odd
// trailing hash is carried up unchanged. An empty list yields h.Empty().
func MerkleRoot(h hasher.Hasher, txs []Transaction) string {
	if len(txs) == 0 {
		return h.Empty()
	}

	level := make([]string, len(txs))
	for i, tx := range txs {
		level[i] = LeafHash(h, tx)
	}

	for len(level) > 1 {
		next := make([]string, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, h.DigestString(level[i]+level[i+1]))
		}
		level = next
	}

	return level[0]
}
