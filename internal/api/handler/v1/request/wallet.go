package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type ChargeRequest struct {
	Amount int64 `json:"amount"`
}

func (req *ChargeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.Required, validation.Min(int64(1))),
	)
}
