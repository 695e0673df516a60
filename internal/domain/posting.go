package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Posting is a set of transactions that must be applied to the ledger as one unit.
type Posting struct {
	Transactions []Transaction
}

// BalanceChange is the net balance change of a single account within a posting.
type BalanceChange struct {
	AccountNumber string
	Delta         decimal.Decimal
}

// Changes returns the net balance change per account ordered by account number.
//
// Callers apply changes in this order so that concurrent postings never lock
// the same pair of accounts in opposite order.
func (p Posting) Changes() []BalanceChange {
	deltas := make(map[string]decimal.Decimal, len(p.Transactions))
	for _, t := range p.Transactions {
		deltas[t.AccountNumber] = deltas[t.AccountNumber].Add(t.Delta())
	}

	changes := make([]BalanceChange, 0, len(deltas))
	for number, delta := range deltas {
		changes = append(changes, BalanceChange{AccountNumber: number, Delta: delta})
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].AccountNumber < changes[j].AccountNumber
	})

	return changes
}

// PostingResult is the result of the posting.
type PostingResult struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}
