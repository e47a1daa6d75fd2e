package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateRoomRequest struct {
	RoomName string `json:"room_name"`
}

func (req *CreateRoomRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RoomName, validation.Required, validation.Length(1, 100)),
	)
}
