package repository

import (
	"context"
	"fmt"

	"github.com/zbd0329/money-distributor/internal/domain"
	"github.com/zbd0329/money-distributor/internal/repository/dao"
)

var (
	ErrWalletExists        = dao.ErrWalletExists
	ErrWalletNotFound      = dao.ErrWalletNotFound
	ErrInsufficientBalance = dao.ErrInsufficientBalance
)

type WalletDAO interface {
	Insert(ctx context.Context, wallet dao.Wallet) (dao.Wallet, error)
	FindByUserID(ctx context.Context, userID uint) (dao.Wallet, error)
	Charge(ctx context.Context, userID uint, amount int64) (dao.Wallet, error)
	ListHistory(ctx context.Context, userID uint) ([]dao.TransactionHistory, error)
}

type WalletRepository struct {
	dao WalletDAO
}

func NewWalletRepository(dao WalletDAO) *WalletRepository {
	return &WalletRepository{
		dao: dao,
	}
}

func (r *WalletRepository) daoToDomain(w dao.Wallet) domain.Wallet {
	return domain.Wallet{
		ID:        w.ID,
		UserID:    w.UserID,
		Balance:   w.Balance,
		UpdatedAt: w.UpdatedAt,
	}
}

func (r *WalletRepository) historyDaoToDomain(h dao.TransactionHistory) domain.Transaction {
	record := domain.Transaction{
		ID:            h.ID,
		Type:          domain.TransactionType(h.TransactionType),
		UserID:        h.UserID,
		Amount:        h.Amount,
		BalanceAfter:  h.BalanceAfter,
		RelatedUserID: h.RelatedUserID,
		Description:   h.Description,
		CreatedAt:     h.CreatedAt,
		Status:        domain.TransactionStatus(h.Status),
	}

	if h.Token != nil {
		record.Token = *h.Token
	}
	if h.ChatRoomID != nil {
		record.ChatRoomID = *h.ChatRoomID
	}

	return record
}

func (r *WalletRepository) Create(ctx context.Context, userID uint) (domain.Wallet, error) {
	wallet, err := r.dao.Insert(ctx, dao.Wallet{UserID: userID})
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(wallet), nil
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID uint) (domain.Wallet, error) {
	wallet, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daoToDomain(wallet), nil
}

func (r *WalletRepository) Charge(ctx context.Context, userID uint, amount int64) (domain.Wallet, error) {
	wallet, err := r.dao.Charge(ctx, userID, amount)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("r.dao.Charge -> %w", err)
	}

	return r.daoToDomain(wallet), nil
}

func (r *WalletRepository) ListTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	records, err := r.dao.ListHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListHistory -> %w", err)
	}

	transactions := make([]domain.Transaction, len(records))
	for i, record := range records {
		transactions[i] = r.historyDaoToDomain(record)
	}

	return transactions, nil
}
