package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zbd0329/money-distributor/internal/domain"
)

var (
	ErrDistributionNotFound = errors.New("distribution not found for token")
	ErrSelfClaim            = errors.New("creator cannot claim from their own distribution")
	ErrClaimWindowExpired   = errors.New("claim window has expired")
	ErrAlreadyClaimed       = errors.New("user already claimed a share of this distribution")
	ErrNoSharesLeft         = errors.New("no unclaimed shares left")
)

type Distribution struct {
	ID             uint   `gorm:"primaryKey"`
	Token          string `gorm:"type:char(3);uniqueIndex;not null"`
	CreatorID      uint   `gorm:"not null"`
	ChatRoomID     string `gorm:"size:36;not null;index"`
	TotalAmount    int64  `gorm:"not null"`
	RecipientCount int    `gorm:"not null"`
	CreatedAt      time.Time

	Details []DistributionDetail `gorm:"foreignKey:DistributionID"`
}

func (Distribution) TableName() string {
	return "money_distribution"
}

type DistributionDetail struct {
	ID              uint  `gorm:"primaryKey"`
	DistributionID  uint  `gorm:"not null;index"`
	AllocatedAmount int64 `gorm:"not null"`
	ReceiverID      *uint
	ClaimedAt       *time.Time
}

func (DistributionDetail) TableName() string {
	return "money_distribution_details"
}

type DistributionDAO struct {
	db      *gorm.DB
	wallets *WalletDAO
}

func NewDistributionDAO(db *gorm.DB, wallets *WalletDAO) *DistributionDAO {
	return &DistributionDAO{
		db:      db,
		wallets: wallets,
	}
}

// Create inserts the distribution with one detail row per share, debits the
// creator's wallet and appends the SPRAY audit row, all in one transaction.
// A failure at any point rolls the whole spray back.
func (d *DistributionDAO) Create(ctx context.Context, dist Distribution, amounts []int64) (Distribution, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := d.wallets.LockTx(tx, dist.CreatorID)
		if err != nil {
			return err
		}
		// Re-check under lock: the fast-path balance check ran unlocked.
		if wallet.Balance < dist.TotalAmount {
			return ErrInsufficientBalance
		}

		if err = tx.Create(&dist).Error; err != nil {
			return err
		}

		details := make([]DistributionDetail, len(amounts))
		for i, amount := range amounts {
			details[i] = DistributionDetail{
				DistributionID:  dist.ID,
				AllocatedAmount: amount,
			}
		}
		if err = tx.Create(&details).Error; err != nil {
			return err
		}

		if err = d.wallets.DebitTx(tx, &wallet, dist.TotalAmount); err != nil {
			return err
		}

		return d.wallets.AppendHistoryTx(tx, TransactionHistory{
			TransactionType: string(domain.TransactionSpray),
			UserID:          dist.CreatorID,
			Amount:          -dist.TotalAmount,
			BalanceAfter:    wallet.Balance,
			Token:           &dist.Token,
			ChatRoomID:      &dist.ChatRoomID,
			Description:     fmt.Sprintf("spray to %d recipients", dist.RecipientCount),
			Status:          string(domain.TransactionSuccess),
		})
	})
	if err != nil {
		return Distribution{}, err
	}

	return dist, nil
}

// ClaimShare executes the locked claim: it locks the distribution row, one
// arbitrary unclaimed detail row, then the claimer's wallet, in that fixed
// order so concurrent claimers cannot deadlock. The claim predicates are
// re-checked under the lock because time passes between the caller's fast
// validation and lock acquisition.
func (d *DistributionDAO) ClaimShare(ctx context.Context, code string, userID uint, roomID string, now time.Time) (int64, error) {
	var claimed int64

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dist Distribution
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token = ? AND chat_room_id = ?", code, roomID).
			First(&dist).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDistributionNotFound
			}
			return err
		}

		if dist.CreatorID == userID {
			return ErrSelfClaim
		}
		if !now.Before(dist.CreatedAt.Add(domain.ClaimWindow)) {
			return ErrClaimWindowExpired
		}

		var alreadyClaimed int64
		err = tx.Model(&DistributionDetail{}).
			Where("distribution_id = ? AND receiver_id = ?", dist.ID, userID).
			Count(&alreadyClaimed).
			Error
		if err != nil {
			return err
		}
		if alreadyClaimed > 0 {
			return ErrAlreadyClaimed
		}

		var detail DistributionDetail
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("distribution_id = ? AND receiver_id IS NULL", dist.ID).
			Limit(1).
			First(&detail).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoSharesLeft
			}
			return err
		}

		wallet, err := d.wallets.LockTx(tx, userID)
		if err != nil {
			return err
		}

		if err = d.wallets.CreditTx(tx, &wallet, detail.AllocatedAmount); err != nil {
			return err
		}

		err = tx.Model(&DistributionDetail{}).
			Where("id = ?", detail.ID).
			Updates(map[string]interface{}{
				"receiver_id": userID,
				"claimed_at":  now,
			}).
			Error
		if err != nil {
			return err
		}

		if err = d.wallets.AppendHistoryTx(tx, TransactionHistory{
			TransactionType: string(domain.TransactionReceive),
			UserID:          userID,
			Amount:          detail.AllocatedAmount,
			BalanceAfter:    wallet.Balance,
			RelatedUserID:   &dist.CreatorID,
			Token:           &code,
			ChatRoomID:      &roomID,
			Description:     "spray receive",
			Status:          string(domain.TransactionSuccess),
		}); err != nil {
			return err
		}

		claimed = detail.AllocatedAmount

		return nil
	})
	if err != nil {
		return 0, err
	}

	return claimed, nil
}

func (d *DistributionDAO) FindByTokenAndRoom(ctx context.Context, code, roomID string) (Distribution, error) {
	var dist Distribution

	result := d.db.WithContext(ctx).
		Where("token = ? AND chat_room_id = ?", code, roomID).
		First(&dist)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Distribution{}, ErrDistributionNotFound
		}

		return Distribution{}, result.Error
	}

	return dist, nil
}

func (d *DistributionDAO) FindByToken(ctx context.Context, code string) (Distribution, error) {
	var dist Distribution

	result := d.db.WithContext(ctx).
		Where("token = ?", code).
		First(&dist)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Distribution{}, ErrDistributionNotFound
		}

		return Distribution{}, result.Error
	}

	return dist, nil
}

func (d *DistributionDAO) HasClaimed(ctx context.Context, distributionID, userID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&DistributionDetail{}).
		Where("distribution_id = ? AND receiver_id = ?", distributionID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *DistributionDAO) ListDetails(ctx context.Context, distributionID uint) ([]DistributionDetail, error) {
	var details []DistributionDetail

	result := d.db.WithContext(ctx).
		Where("distribution_id = ?", distributionID).
		Order("claimed_at ASC").
		Find(&details)
	if result.Error != nil {
		return nil, result.Error
	}

	return details, nil
}
