package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zbd0329/money-distributor/internal/domain"
	"github.com/zbd0329/money-distributor/internal/repository"
)

var ErrWalletExists = repository.ErrWalletExists

type WalletRepository interface {
	Create(ctx context.Context, userID uint) (domain.Wallet, error)
	FindByUserID(ctx context.Context, userID uint) (domain.Wallet, error)
	Charge(ctx context.Context, userID uint, amount int64) (domain.Wallet, error)
	ListTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error)
}

type WalletService struct {
	repo WalletRepository
}

func NewWalletService(repo WalletRepository) *WalletService {
	return &WalletService{
		repo: repo,
	}
}

func (s *WalletService) CreateWallet(ctx context.Context, userID uint) (domain.Wallet, error) {
	wallet, err := s.repo.Create(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrWalletExists) {
			return domain.Wallet{}, ErrWalletExists
		}
		return domain.Wallet{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return wallet, nil
}

func (s *WalletService) Charge(ctx context.Context, userID uint, amount int64) (domain.Wallet, error) {
	wallet, err := s.repo.Charge(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			return domain.Wallet{}, ErrWalletNotFound
		}
		return domain.Wallet{}, fmt.Errorf("s.repo.Charge -> %w", err)
	}

	return wallet, nil
}

func (s *WalletService) GetWallet(ctx context.Context, userID uint) (domain.Wallet, error) {
	wallet, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			return domain.Wallet{}, ErrWalletNotFound
		}
		return domain.Wallet{}, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return wallet, nil
}

func (s *WalletService) ListTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	transactions, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListTransactions -> %w", err)
	}

	return transactions, nil
}
