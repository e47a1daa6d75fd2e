package domain

import "time"

const (
	// ClaimWindow is how long after creation shares can still be claimed.
	ClaimWindow = 10 * time.Minute

	// LookupWindow is how long after creation the creator can view the spray.
	LookupWindow = 7 * 24 * time.Hour
)

// Distribution is one money-splitting event ("spray") created for a chat room.
// It is immutable after creation; both windows are computed from CreatedAt.
type Distribution struct {
	ID             uint      `json:"id"`
	Token          string    `json:"token"`
	CreatorID      uint      `json:"creator_id"`
	ChatRoomID     string    `json:"chat_room_id"`
	TotalAmount    int64     `json:"total_amount"`
	RecipientCount int       `json:"recipient_count"`
	CreatedAt      time.Time `json:"created_at"`

	Shares []Share `json:"shares,omitempty"`
}

// Share is one claimable slice of a distribution. It transitions at most once,
// from unclaimed (ReceiverID == nil) to claimed.
type Share struct {
	ID              uint       `json:"id"`
	DistributionID  uint       `json:"distribution_id"`
	AllocatedAmount int64      `json:"allocated_amount"`
	ReceiverID      *uint      `json:"receiver_id,omitempty"`
	ClaimedAt       *time.Time `json:"claimed_at,omitempty"`
}

func (d Distribution) ClaimOpen(now time.Time) bool {
	return now.Before(d.CreatedAt.Add(ClaimWindow))
}

func (d Distribution) LookupOpen(now time.Time) bool {
	return now.Before(d.CreatedAt.Add(LookupWindow))
}

// ReceivedShare is one claimed entry in a creator's status lookup.
type ReceivedShare struct {
	UserID uint  `json:"user_id"`
	Amount int64 `json:"amount"`
}

// SprayStatus is the creator-facing view of a distribution's progress.
type SprayStatus struct {
	SprayTime      time.Time       `json:"spray_time"`
	SprayAmount    int64           `json:"spray_amount"`
	ReceivedAmount int64           `json:"received_amount"`
	ReceivedList   []ReceivedShare `json:"received_list"`
}
