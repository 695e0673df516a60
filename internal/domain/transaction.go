package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates missing or malformed amount.
	ErrInvalidAmount = fmt.Errorf("%w: please enter a valid amount", ErrValidation)
	// ErrNegativeAmount indicates negative amount.
	ErrNegativeAmount = fmt.Errorf("%w: amount must not be negative", ErrValidation)
	// ErrSameAccount indicates a transfer to the source account itself.
	ErrSameAccount = fmt.Errorf("%w: cannot transfer to your own account", ErrValidation)
)

// TransactionType is the kind of balance change recorded in the log.
type TransactionType string

// Supported transaction types.
const (
	Deposit     TransactionType = "DEPOSIT"
	Withdraw    TransactionType = "WITHDRAW"
	TransferIn  TransactionType = "TRANSFER_IN"
	TransferOut TransactionType = "TRANSFER_OUT"
)

// Credit reports whether the transaction type increases the balance.
func (t TransactionType) Credit() bool {
	return t == Deposit || t == TransferIn
}

// Transaction holds a single balance change of an account.
type Transaction struct {
	ID            string          `json:"id" db:"id"`
	Type          TransactionType `json:"type" db:"type"`
	AccountNumber string          `json:"account_number" db:"account_number"`
	Amount        decimal.Decimal `json:"amount" db:"amount"` // never negative
	Timestamp     time.Time       `json:"timestamp" db:"created_at"`
	Note          string          `json:"note,omitempty" db:"note"`
}

// Delta returns the signed balance change caused by the transaction.
func (t Transaction) Delta() decimal.Decimal {
	if t.Type.Credit() {
		return t.Amount
	}

	return t.Amount.Neg()
}
