package response

import (
	"github.com/zbd0329/money-distributor/internal/domain"
)

type WalletResponse struct {
	UserID  uint  `json:"user_id"`
	Balance int64 `json:"balance"`
}

func NewWalletResponse(wallet domain.Wallet) WalletResponse {
	return WalletResponse{
		UserID:  wallet.UserID,
		Balance: wallet.Balance,
	}
}

type WalletDetailResponse struct {
	UserID  uint                 `json:"user_id"`
	Balance int64                `json:"balance"`
	History []domain.Transaction `json:"history"`
}
