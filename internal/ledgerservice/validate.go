package ledgerservice

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrBlankName
	}

	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return domain.ErrInvalidEmail
	}

	return nil
}

// Amount bounds.
const (
	maxAmountLen           = 64
	maxAmountScale         = 8
	maxAmountIntegerDigits = 18
)

// parseAmount accepts any non-negative decimal within the amount bounds, zero included.
func parseAmount(amount string) (decimal.Decimal, error) {
	if amount == "" || len(amount) > maxAmountLen {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if value.IsNegative() {
		return decimal.Decimal{}, domain.ErrNegativeAmount
	}

	if value.Exponent() < -maxAmountScale || value.NumDigits()+int(value.Exponent()) > maxAmountIntegerDigits {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	return value, nil
}
