package dto

import (
	"encoding/json"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AmountInput is an amount as typed by the operator. It accepts a JSON number
// or a JSON string so that parsing errors surface as validation errors
// instead of binding failures.
type AmountInput string

// UnmarshalJSON implements json.Unmarshaler.
func (a *AmountInput) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = AmountInput(n.String())
	return nil
}

// Decimal parses the amount. It fails with apperrors.ErrInvalidAmount.
func (a AmountInput) Decimal() (decimal.Decimal, error) {
	return domain.ParseAmount(string(a))
}
