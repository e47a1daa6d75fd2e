package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var tokenPattern = regexp.MustCompile(`^[A-Z0-9]{3}$`)

type SprayRequest struct {
	TotalAmount    int64 `json:"total_amount"`
	RecipientCount int   `json:"recipient_count"`
}

func (req *SprayRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TotalAmount, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.RecipientCount, validation.Required, validation.Min(1),
			validation.Max(int(req.TotalAmount)).Error("recipient count cannot exceed total amount")),
	)
}

type ReceiveRequest struct {
	Token string `json:"token"`
}

func (req *ReceiveRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required,
			validation.Match(tokenPattern).Error("token must be 3 uppercase alphanumeric characters")),
	)
}
