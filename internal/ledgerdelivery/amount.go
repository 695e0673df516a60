package ledgerdelivery

import (
	"bytes"
	"encoding/json"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// amount binds a money amount sent either as a JSON string or as a JSON number.
// The literal text is kept so no precision is lost before the service parses it.
type amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *amount) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return domain.ErrInvalidAmount
		}

		*a = amount(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return domain.ErrInvalidAmount
	}

	*a = amount(n)

	return nil
}
