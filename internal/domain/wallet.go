package domain

import "time"

type Wallet struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TransactionCharge  TransactionType = "CHARGE"
	TransactionSpray   TransactionType = "SPRAY"
	TransactionReceive TransactionType = "RECEIVE"
)

type TransactionStatus string

const (
	TransactionSuccess   TransactionStatus = "SUCCESS"
	TransactionFailed    TransactionStatus = "FAILED"
	TransactionCancelled TransactionStatus = "CANCELLED"
)

// Transaction is one immutable audit entry for a wallet balance change.
// Amount is signed: debits are negative, credits positive.
type Transaction struct {
	ID            uint              `json:"id"`
	Type          TransactionType   `json:"type"`
	UserID        uint              `json:"user_id"`
	Amount        int64             `json:"amount"`
	BalanceAfter  int64             `json:"balance_after"`
	RelatedUserID *uint             `json:"related_user_id,omitempty"`
	Token         string            `json:"token,omitempty"`
	ChatRoomID    string            `json:"chat_room_id,omitempty"`
	Description   string            `json:"description,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Status        TransactionStatus `json:"status"`
}
