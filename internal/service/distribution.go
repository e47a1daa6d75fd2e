package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zbd0329/money-distributor/internal/dispatch"
	"github.com/zbd0329/money-distributor/internal/domain"
	"github.com/zbd0329/money-distributor/internal/repository"
	"github.com/zbd0329/money-distributor/internal/splitter"
	"github.com/zbd0329/money-distributor/internal/token"
)

var (
	ErrNotRoomMember = errors.New("user is not a member of the chat room")
	ErrNotCreator    = errors.New("only the creator can view this distribution")
	ErrInvalidToken  = errors.New("invalid or expired distribution token")

	ErrSelfClaim           = repository.ErrSelfClaim
	ErrClaimWindowExpired  = repository.ErrClaimWindowExpired
	ErrAlreadyClaimed      = repository.ErrAlreadyClaimed
	ErrNoSharesLeft        = repository.ErrNoSharesLeft
	ErrWalletNotFound      = repository.ErrWalletNotFound
	ErrInsufficientBalance = repository.ErrInsufficientBalance

	ErrInvalidSpray         = splitter.ErrInvalidSplit
	ErrClaimTimeout         = dispatch.ErrClaimTimeout
	ErrClaimQueueFull       = dispatch.ErrQueueFull
	ErrTokenStoreDown       = token.ErrStoreUnavailable
	ErrDistributionCreation = errors.New("failed to create distribution")
)

type DistributionRepository interface {
	Create(ctx context.Context, dist domain.Distribution, amounts []int64) (domain.Distribution, error)
	ClaimShare(ctx context.Context, code string, userID uint, roomID string, now time.Time) (int64, error)
	FindByTokenAndRoom(ctx context.Context, code, roomID string) (domain.Distribution, error)
	FindByToken(ctx context.Context, code string) (domain.Distribution, error)
	HasClaimed(ctx context.Context, distributionID, userID uint) (bool, error)
	ListShares(ctx context.Context, distributionID uint) ([]domain.Share, error)
}

type WalletReader interface {
	FindByUserID(ctx context.Context, userID uint) (domain.Wallet, error)
}

type MembershipChecker interface {
	IsMember(ctx context.Context, roomID string, userID uint) (bool, error)
}

type TokenAllocator interface {
	Issue(ctx context.Context) (string, error)
	IsActive(ctx context.Context, code string) (bool, error)
	Release(ctx context.Context, code string) error
}

// DispatcherOptions sizes the claim worker pool owned by the service.
type DispatcherOptions struct {
	Workers      int
	QueueSize    int
	ClaimTimeout time.Duration
}

type DistributionService struct {
	repo      DistributionRepository
	wallets   WalletReader
	rooms     MembershipChecker
	allocator TokenAllocator

	dispatcher   *dispatch.Dispatcher
	claimTimeout time.Duration
}

func NewDistributionService(
	repo DistributionRepository,
	wallets WalletReader,
	rooms MembershipChecker,
	allocator TokenAllocator,
	opts DispatcherOptions,
) *DistributionService {
	if opts.ClaimTimeout <= 0 {
		opts.ClaimTimeout = 10 * time.Second
	}

	s := &DistributionService{
		repo:         repo,
		wallets:      wallets,
		rooms:        rooms,
		allocator:    allocator,
		claimTimeout: opts.ClaimTimeout,
	}

	s.dispatcher = dispatch.New(s.executeClaim, opts.Workers, opts.QueueSize)
	s.dispatcher.Start()

	return s
}

// Close stops the claim worker pool.
func (s *DistributionService) Close() {
	s.dispatcher.Stop()
}

// CreateSpray validates the creator, obtains a token, splits the amount and
// persists the distribution with the wallet debit in one transaction.
// Returns the spray's public token.
func (s *DistributionService) CreateSpray(ctx context.Context, creatorID uint, roomID string, totalAmount int64, recipientCount int) (string, error) {
	isMember, err := s.rooms.IsMember(ctx, roomID, creatorID)
	if err != nil {
		return "", fmt.Errorf("s.rooms.IsMember -> %w", err)
	}
	if !isMember {
		return "", ErrNotRoomMember
	}

	wallet, err := s.wallets.FindByUserID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			return "", ErrWalletNotFound
		}
		return "", fmt.Errorf("s.wallets.FindByUserID -> %w", err)
	}
	if wallet.Balance < totalAmount {
		return "", ErrInsufficientBalance
	}

	amounts, err := splitter.Split(totalAmount, recipientCount)
	if err != nil {
		return "", err
	}

	code, err := s.allocator.Issue(ctx)
	if err != nil {
		return "", fmt.Errorf("s.allocator.Issue -> %w", err)
	}

	dist := domain.Distribution{
		Token:          code,
		CreatorID:      creatorID,
		ChatRoomID:     roomID,
		TotalAmount:    totalAmount,
		RecipientCount: recipientCount,
	}

	if _, err = s.repo.Create(ctx, dist, amounts); err != nil {
		// Hand the code back so a failed spray does not consume the
		// 46,656-code keyspace for 7 days.
		if releaseErr := s.allocator.Release(ctx, code); releaseErr != nil {
			zap.L().Warn("failed to release token after create failure",
				zap.String("token", code), zap.Error(releaseErr))
		}

		if errors.Is(err, ErrInsufficientBalance) {
			return "", ErrInsufficientBalance
		}

		zap.L().Error("distribution creation failed", zap.Error(err))

		return "", ErrDistributionCreation
	}

	return code, nil
}

// SubmitClaim runs the fast, lock-free checks synchronously, then hands the
// locked claim transaction to the worker pool and waits up to the configured
// timeout. A timeout means unknown outcome; retrying is safe because a
// duplicate claim fails on its own.
func (s *DistributionService) SubmitClaim(ctx context.Context, code string, userID uint, roomID string) (int64, error) {
	if err := s.validateClaim(ctx, code, userID, roomID); err != nil {
		return 0, err
	}

	amount, err := s.dispatcher.Submit(ctx, dispatch.ClaimJob{
		Token:  code,
		UserID: userID,
		RoomID: roomID,
	}, s.claimTimeout)
	if err != nil {
		if errors.Is(err, repository.ErrDistributionNotFound) {
			return 0, ErrInvalidToken
		}
		return 0, err
	}

	return amount, nil
}

func (s *DistributionService) validateClaim(ctx context.Context, code string, userID uint, roomID string) error {
	isMember, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return fmt.Errorf("s.rooms.IsMember -> %w", err)
	}
	if !isMember {
		return ErrNotRoomMember
	}

	dist, err := s.repo.FindByTokenAndRoom(ctx, code, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrDistributionNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("s.repo.FindByTokenAndRoom -> %w", err)
	}

	if dist.CreatorID == userID {
		return ErrSelfClaim
	}
	if !dist.ClaimOpen(time.Now().UTC()) {
		return ErrClaimWindowExpired
	}

	claimed, err := s.repo.HasClaimed(ctx, dist.ID, userID)
	if err != nil {
		return fmt.Errorf("s.repo.HasClaimed -> %w", err)
	}
	if claimed {
		return ErrAlreadyClaimed
	}

	return nil
}

func (s *DistributionService) executeClaim(ctx context.Context, job dispatch.ClaimJob) (int64, error) {
	return s.repo.ClaimShare(ctx, job.Token, job.UserID, job.RoomID, time.Now().UTC())
}

// LookupSpray returns the creator-facing claim status of a distribution.
// Only the creator may look it up, and only within 7 days of creation.
func (s *DistributionService) LookupSpray(ctx context.Context, code string, requesterID uint) (domain.SprayStatus, error) {
	active, err := s.allocator.IsActive(ctx, code)
	if err != nil {
		return domain.SprayStatus{}, fmt.Errorf("s.allocator.IsActive -> %w", err)
	}
	if !active {
		return domain.SprayStatus{}, ErrInvalidToken
	}

	dist, err := s.repo.FindByToken(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrDistributionNotFound) {
			return domain.SprayStatus{}, ErrInvalidToken
		}
		return domain.SprayStatus{}, fmt.Errorf("s.repo.FindByToken -> %w", err)
	}

	if dist.CreatorID != requesterID {
		return domain.SprayStatus{}, ErrNotCreator
	}
	if !dist.LookupOpen(time.Now().UTC()) {
		return domain.SprayStatus{}, ErrInvalidToken
	}

	shares, err := s.repo.ListShares(ctx, dist.ID)
	if err != nil {
		return domain.SprayStatus{}, fmt.Errorf("s.repo.ListShares -> %w", err)
	}

	status := domain.SprayStatus{
		SprayTime:    dist.CreatedAt,
		SprayAmount:  dist.TotalAmount,
		ReceivedList: []domain.ReceivedShare{},
	}
	for _, share := range shares {
		if share.ReceiverID == nil {
			continue
		}
		status.ReceivedAmount += share.AllocatedAmount
		status.ReceivedList = append(status.ReceivedList, domain.ReceivedShare{
			UserID: *share.ReceiverID,
			Amount: share.AllocatedAmount,
		})
	}

	return status, nil
}
