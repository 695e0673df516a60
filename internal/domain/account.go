// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation is the parent of all input validation errors.
	ErrValidation = errors.New("validation failed")
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNumberTaken indicates that the generated account number is already in use.
	ErrAccountNumberTaken = errors.New("account number already exists")
	// ErrInsufficientFunds indicates that the operation would make the balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBlankName indicates an empty or whitespace-only customer name.
	ErrBlankName = fmt.Errorf("%w: name is required", ErrValidation)
	// ErrInvalidEmail indicates an empty email or an email without "@".
	ErrInvalidEmail = fmt.Errorf("%w: email must contain @", ErrValidation)
	// ErrInvalidAccountType indicates an account type other than SAVINGS or CURRENT.
	ErrInvalidAccountType = fmt.Errorf("%w: type must be SAVINGS/CURRENT", ErrValidation)
)

// AccountType is the kind of the account.
type AccountType string

// Supported account types.
const (
	Savings AccountType = "SAVINGS"
	Current AccountType = "CURRENT"
)

// AccountTypes holds all the supported account types.
var AccountTypes = []AccountType{Savings, Current}

// ParseAccountType returns the canonical account type for s, ignoring case.
func ParseAccountType(s string) (AccountType, error) {
	for _, t := range AccountTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}

	return "", ErrInvalidAccountType
}

const accountNumberPrefix = "AC"

// FormatAccountNumber returns the account number for the given sequence number.
func FormatAccountNumber(seq int64) string {
	return fmt.Sprintf("%s%06d", accountNumberPrefix, seq)
}

// Account holds customer balance data.
type Account struct {
	Number     string          `json:"account_number" db:"account_number"`
	Type       AccountType     `json:"account_type" db:"account_type"`
	CustomerID string          `json:"customer_id" db:"customer_id"`
	Balance    decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
