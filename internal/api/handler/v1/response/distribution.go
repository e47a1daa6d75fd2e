package response

import (
	"time"

	"github.com/zbd0329/money-distributor/internal/domain"
)

type SprayResponse struct {
	Token string `json:"token"`
}

type ReceiveResponse struct {
	ReceivedAmount int64 `json:"received_amount"`
}

type ReceivedDetail struct {
	UserID uint  `json:"user_id"`
	Amount int64 `json:"amount"`
}

type SprayStatusResponse struct {
	SprayTime      time.Time        `json:"spray_time"`
	SprayAmount    int64            `json:"spray_amount"`
	ReceivedAmount int64            `json:"received_amount"`
	ReceivedList   []ReceivedDetail `json:"received_list"`
}

func NewSprayStatusResponse(status domain.SprayStatus) SprayStatusResponse {
	received := make([]ReceivedDetail, len(status.ReceivedList))
	for i, share := range status.ReceivedList {
		received[i] = ReceivedDetail{
			UserID: share.UserID,
			Amount: share.Amount,
		}
	}

	return SprayStatusResponse{
		SprayTime:      status.SprayTime,
		SprayAmount:    status.SprayAmount,
		ReceivedAmount: status.ReceivedAmount,
		ReceivedList:   received,
	}
}
