package domain

import (
	"errors"
	"time"
)

// ErrCustomerNotFound indicates that the customer referenced by an account does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// Customer holds the account owner data.
type Customer struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
