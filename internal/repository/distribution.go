package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/zbd0329/money-distributor/internal/domain"
	"github.com/zbd0329/money-distributor/internal/repository/dao"
)

var (
	ErrDistributionNotFound = dao.ErrDistributionNotFound
	ErrSelfClaim            = dao.ErrSelfClaim
	ErrClaimWindowExpired   = dao.ErrClaimWindowExpired
	ErrAlreadyClaimed       = dao.ErrAlreadyClaimed
	ErrNoSharesLeft         = dao.ErrNoSharesLeft
)

type DistributionDAO interface {
	Create(ctx context.Context, dist dao.Distribution, amounts []int64) (dao.Distribution, error)
	ClaimShare(ctx context.Context, code string, userID uint, roomID string, now time.Time) (int64, error)
	FindByTokenAndRoom(ctx context.Context, code, roomID string) (dao.Distribution, error)
	FindByToken(ctx context.Context, code string) (dao.Distribution, error)
	HasClaimed(ctx context.Context, distributionID, userID uint) (bool, error)
	ListDetails(ctx context.Context, distributionID uint) ([]dao.DistributionDetail, error)
}

type DistributionRepository struct {
	dao DistributionDAO
}

func NewDistributionRepository(dao DistributionDAO) *DistributionRepository {
	return &DistributionRepository{
		dao: dao,
	}
}

func (r *DistributionRepository) domainToDao(d domain.Distribution) dao.Distribution {
	return dao.Distribution{
		ID:             d.ID,
		Token:          d.Token,
		CreatorID:      d.CreatorID,
		ChatRoomID:     d.ChatRoomID,
		TotalAmount:    d.TotalAmount,
		RecipientCount: d.RecipientCount,
		CreatedAt:      d.CreatedAt,
	}
}

func (r *DistributionRepository) daoToDomain(d dao.Distribution) domain.Distribution {
	return domain.Distribution{
		ID:             d.ID,
		Token:          d.Token,
		CreatorID:      d.CreatorID,
		ChatRoomID:     d.ChatRoomID,
		TotalAmount:    d.TotalAmount,
		RecipientCount: d.RecipientCount,
		CreatedAt:      d.CreatedAt,
	}
}

func (r *DistributionRepository) detailDaoToDomain(d dao.DistributionDetail) domain.Share {
	return domain.Share{
		ID:              d.ID,
		DistributionID:  d.DistributionID,
		AllocatedAmount: d.AllocatedAmount,
		ReceiverID:      d.ReceiverID,
		ClaimedAt:       d.ClaimedAt,
	}
}

func (r *DistributionRepository) Create(ctx context.Context, dist domain.Distribution, amounts []int64) (domain.Distribution, error) {
	created, err := r.dao.Create(ctx, r.domainToDao(dist), amounts)
	if err != nil {
		return domain.Distribution{}, fmt.Errorf("r.dao.Create -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *DistributionRepository) ClaimShare(ctx context.Context, code string, userID uint, roomID string, now time.Time) (int64, error) {
	amount, err := r.dao.ClaimShare(ctx, code, userID, roomID, now)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ClaimShare -> %w", err)
	}

	return amount, nil
}

func (r *DistributionRepository) FindByTokenAndRoom(ctx context.Context, code, roomID string) (domain.Distribution, error) {
	dist, err := r.dao.FindByTokenAndRoom(ctx, code, roomID)
	if err != nil {
		return domain.Distribution{}, fmt.Errorf("r.dao.FindByTokenAndRoom -> %w", err)
	}

	return r.daoToDomain(dist), nil
}

func (r *DistributionRepository) FindByToken(ctx context.Context, code string) (domain.Distribution, error) {
	dist, err := r.dao.FindByToken(ctx, code)
	if err != nil {
		return domain.Distribution{}, fmt.Errorf("r.dao.FindByToken -> %w", err)
	}

	return r.daoToDomain(dist), nil
}

func (r *DistributionRepository) HasClaimed(ctx context.Context, distributionID, userID uint) (bool, error) {
	claimed, err := r.dao.HasClaimed(ctx, distributionID, userID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasClaimed -> %w", err)
	}

	return claimed, nil
}

func (r *DistributionRepository) ListShares(ctx context.Context, distributionID uint) ([]domain.Share, error) {
	details, err := r.dao.ListDetails(ctx, distributionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListDetails -> %w", err)
	}

	shares := make([]domain.Share, len(details))
	for i, detail := range details {
		shares[i] = r.detailDaoToDomain(detail)
	}

	return shares, nil
}
