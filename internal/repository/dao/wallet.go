package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWalletExists        = errors.New("wallet already exists")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

type Wallet struct {
	ID        uint  `gorm:"primaryKey"`
	UserID    uint  `gorm:"uniqueIndex;not null"`
	Balance   int64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (Wallet) TableName() string {
	return "user_wallet"
}

// TransactionHistory rows are append-only; nothing ever updates or deletes
// them. One row is written per wallet mutation, with the resulting balance.
type TransactionHistory struct {
	ID              uint   `gorm:"primaryKey"`
	TransactionType string `gorm:"size:10;not null;index"`
	UserID          uint   `gorm:"not null;index"`
	Amount          int64  `gorm:"not null"`
	BalanceAfter    int64  `gorm:"not null"`
	RelatedUserID   *uint
	Token           *string `gorm:"type:char(3);index"`
	ChatRoomID      *string `gorm:"size:36"`
	Description     string  `gorm:"size:255"`
	CreatedAt       time.Time
	Status          string `gorm:"size:10;not null"`
}

func (TransactionHistory) TableName() string {
	return "transaction_history"
}

type WalletDAO struct {
	db *gorm.DB
}

func NewWalletDAO(db *gorm.DB) *WalletDAO {
	return &WalletDAO{
		db: db,
	}
}

func (d *WalletDAO) Insert(ctx context.Context, wallet Wallet) (Wallet, error) {
	result := d.db.WithContext(ctx).Create(&wallet)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return Wallet{}, ErrWalletExists
		}

		return Wallet{}, result.Error
	}

	return wallet, nil
}

func (d *WalletDAO) FindByUserID(ctx context.Context, userID uint) (Wallet, error) {
	var wallet Wallet

	result := d.db.WithContext(ctx).First(&wallet, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Wallet{}, ErrWalletNotFound
		}

		return Wallet{}, result.Error
	}

	return wallet, nil
}

// LockTx loads the user's wallet row FOR UPDATE inside the caller's
// transaction. Every balance mutation below requires the row to be locked
// through this method first.
func (d *WalletDAO) LockTx(tx *gorm.DB, userID uint) (Wallet, error) {
	var wallet Wallet

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&wallet, "user_id = ?", userID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Wallet{}, ErrWalletNotFound
		}

		return Wallet{}, err
	}

	return wallet, nil
}

// CreditTx adds amount to a wallet previously locked via LockTx, updating the
// passed struct so the caller can record the resulting balance.
func (d *WalletDAO) CreditTx(tx *gorm.DB, wallet *Wallet, amount int64) error {
	wallet.Balance += amount

	return tx.Model(&Wallet{}).
		Where("id = ?", wallet.ID).
		Update("balance", wallet.Balance).
		Error
}

// DebitTx subtracts amount from a wallet previously locked via LockTx.
// Balances never go negative.
func (d *WalletDAO) DebitTx(tx *gorm.DB, wallet *Wallet, amount int64) error {
	if wallet.Balance < amount {
		return ErrInsufficientBalance
	}
	wallet.Balance -= amount

	return tx.Model(&Wallet{}).
		Where("id = ?", wallet.ID).
		Update("balance", wallet.Balance).
		Error
}

// AppendHistoryTx writes the audit row for a wallet mutation inside the same
// transaction that performed it.
func (d *WalletDAO) AppendHistoryTx(tx *gorm.DB, record TransactionHistory) error {
	return tx.Create(&record).Error
}

// Charge tops up a wallet in its own locked transaction and appends a CHARGE
// history row.
func (d *WalletDAO) Charge(ctx context.Context, userID uint, amount int64) (Wallet, error) {
	var wallet Wallet

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, err = d.LockTx(tx, userID)
		if err != nil {
			return err
		}

		if err = d.CreditTx(tx, &wallet, amount); err != nil {
			return err
		}

		return d.AppendHistoryTx(tx, TransactionHistory{
			TransactionType: "CHARGE",
			UserID:          userID,
			Amount:          amount,
			BalanceAfter:    wallet.Balance,
			Description:     "wallet charge",
			Status:          "SUCCESS",
		})
	})
	if err != nil {
		return Wallet{}, err
	}

	return wallet, nil
}

func (d *WalletDAO) ListHistory(ctx context.Context, userID uint) ([]TransactionHistory, error) {
	var records []TransactionHistory

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	return records, nil
}
