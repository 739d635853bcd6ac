package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction moves Amount from Sender to Receiver. It carries no signature.
type Transaction struct {
	Sender   string          `json:"sender"`
	Receiver string          `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
}

func NewTransaction(sender, receiver string, amount decimal.Decimal) Transaction {
	return Transaction{Sender: sender, Receiver: receiver, Amount: amount}
}

// ParseTransaction parses the "sender:receiver:amount" form accepted on the command line.
func ParseTransaction(s string) (Transaction, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Transaction{}, fmt.Errorf("%w: expected sender:receiver:amount, got %q", ErrInvalidTransaction, s)
	}

	sender, receiver := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if sender == "" || receiver == "" {
		return Transaction{}, fmt.Errorf("%w: sender and receiver are required, got %q", ErrInvalidTransaction, s)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: bad amount %q: %v", ErrInvalidTransaction, parts[2], err)
	}

	return NewTransaction(sender, receiver, amount), nil
}

// Validate checks the fields a transaction needs to be hashed meaningfully.
func (tx Transaction) Validate() error {
	if tx.Sender == "" {
		return fmt.Errorf("%w: missing sender", ErrInvalidTransaction)
	}
	if tx.Receiver == "" {
		return fmt.Errorf("%w: missing receiver", ErrInvalidTransaction)
	}
	return nil
}

// canonical is the byte form hashed into a Merkle leaf. Strings are quoted so
// that field boundaries stay unambiguous, and the amount uses the decimal's
// normalized form so 1.50 and 1.5 hash the same.
func (tx Transaction) canonical() []byte {
	return []byte(fmt.Sprintf("%q%q%q", tx.Sender, tx.Receiver, tx.Amount.String()))
}

func (tx Transaction) String() string {
	return fmt.Sprintf("%s:%s:%s", tx.Sender, tx.Receiver, tx.Amount.String())
}

func cloneTransactions(txs []Transaction) []Transaction {
	if txs == nil {
		return nil
	}
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out
}
