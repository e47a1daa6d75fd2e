package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbd0329/money-distributor/internal/domain"
	"github.com/zbd0329/money-distributor/internal/repository"
)

type fakeDistributionRepo struct {
	createFn             func(ctx context.Context, dist domain.Distribution, amounts []int64) (domain.Distribution, error)
	claimShareFn         func(ctx context.Context, code string, userID uint, roomID string, now time.Time) (int64, error)
	findByTokenAndRoomFn func(ctx context.Context, code, roomID string) (domain.Distribution, error)
	findByTokenFn        func(ctx context.Context, code string) (domain.Distribution, error)
	hasClaimedFn         func(ctx context.Context, distributionID, userID uint) (bool, error)
	listSharesFn         func(ctx context.Context, distributionID uint) ([]domain.Share, error)
}

func (f *fakeDistributionRepo) Create(ctx context.Context, dist domain.Distribution, amounts []int64) (domain.Distribution, error) {
	return f.createFn(ctx, dist, amounts)
}

func (f *fakeDistributionRepo) ClaimShare(ctx context.Context, code string, userID uint, roomID string, now time.Time) (int64, error) {
	return f.claimShareFn(ctx, code, userID, roomID, now)
}

func (f *fakeDistributionRepo) FindByTokenAndRoom(ctx context.Context, code, roomID string) (domain.Distribution, error) {
	return f.findByTokenAndRoomFn(ctx, code, roomID)
}

func (f *fakeDistributionRepo) FindByToken(ctx context.Context, code string) (domain.Distribution, error) {
	return f.findByTokenFn(ctx, code)
}

func (f *fakeDistributionRepo) HasClaimed(ctx context.Context, distributionID, userID uint) (bool, error) {
	if f.hasClaimedFn == nil {
		return false, nil
	}
	return f.hasClaimedFn(ctx, distributionID, userID)
}

func (f *fakeDistributionRepo) ListShares(ctx context.Context, distributionID uint) ([]domain.Share, error) {
	return f.listSharesFn(ctx, distributionID)
}

type fakeWalletReader struct {
	wallets map[uint]domain.Wallet
}

func (f *fakeWalletReader) FindByUserID(_ context.Context, userID uint) (domain.Wallet, error) {
	wallet, ok := f.wallets[userID]
	if !ok {
		return domain.Wallet{}, ErrWalletNotFound
	}
	return wallet, nil
}

type fakeMembershipChecker struct {
	members map[string][]uint
}

func (f *fakeMembershipChecker) IsMember(_ context.Context, roomID string, userID uint) (bool, error) {
	for _, id := range f.members[roomID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeAllocator struct {
	code      string
	issueErr  error
	active    bool
	activeErr error

	issued   int
	released []string
}

func (f *fakeAllocator) Issue(_ context.Context) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.issued++
	return f.code, nil
}

func (f *fakeAllocator) IsActive(_ context.Context, _ string) (bool, error) {
	return f.active, f.activeErr
}

func (f *fakeAllocator) Release(_ context.Context, code string) error {
	f.released = append(f.released, code)
	return nil
}

func newTestService(t *testing.T, repo DistributionRepository, wallets WalletReader, rooms MembershipChecker, allocator TokenAllocator) *DistributionService {
	t.Helper()

	svc := NewDistributionService(repo, wallets, rooms, allocator, DispatcherOptions{
		Workers:      2,
		QueueSize:    8,
		ClaimTimeout: 2 * time.Second,
	})
	t.Cleanup(svc.Close)

	return svc
}

func TestDistributionService_CreateSpray(t *testing.T) {
	rooms := &fakeMembershipChecker{members: map[string][]uint{"room-1": {1, 2, 3}}}
	wallets := &fakeWalletReader{wallets: map[uint]domain.Wallet{1: {UserID: 1, Balance: 10000}}}
	allocator := &fakeAllocator{code: "AB3"}

	var gotDist domain.Distribution
	var gotAmounts []int64
	repo := &fakeDistributionRepo{
		createFn: func(_ context.Context, dist domain.Distribution, amounts []int64) (domain.Distribution, error) {
			gotDist = dist
			gotAmounts = amounts
			dist.ID = 42
			return dist, nil
		},
	}

	svc := newTestService(t, repo, wallets, rooms, allocator)

	code, err := svc.CreateSpray(context.Background(), 1, "room-1", 5000, 3)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{3}$`), code)
	assert.Equal(t, "AB3", gotDist.Token)
	assert.Equal(t, uint(1), gotDist.CreatorID)
	assert.Equal(t, "room-1", gotDist.ChatRoomID)
	require.Len(t, gotAmounts, 3)

	var sum int64
	for _, a := range gotAmounts {
		sum += a
	}
	assert.Equal(t, int64(5000), sum)
}

func TestDistributionService_CreateSpray_Errors(t *testing.T) {
	rooms := &fakeMembershipChecker{members: map[string][]uint{"room-1": {1, 2}}}
	wallets := &fakeWalletReader{wallets: map[uint]domain.Wallet{1: {UserID: 1, Balance: 100}}}

	tests := []struct {
		name    string
		userID  uint
		roomID  string
		total   int64
		count   int
		wantErr error
	}{
		{"not a room member", 9, "room-1", 100, 2, ErrNotRoomMember},
		{"unknown room", 1, "room-9", 100, 2, ErrNotRoomMember},
		{"no wallet", 2, "room-1", 100, 2, ErrWalletNotFound},
		{"insufficient balance", 1, "room-1", 500, 2, ErrInsufficientBalance},
		{"more recipients than units", 1, "room-1", 2, 3, ErrInvalidSpray},
		{"zero recipients", 1, "room-1", 100, 0, ErrInvalidSpray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocator := &fakeAllocator{code: "AB3"}
			repo := &fakeDistributionRepo{
				createFn: func(_ context.Context, dist domain.Distribution, _ []int64) (domain.Distribution, error) {
					return dist, nil
				},
			}
			svc := newTestService(t, repo, wallets, rooms, allocator)

			_, err := svc.CreateSpray(context.Background(), tt.userID, tt.roomID, tt.total, tt.count)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, allocator.issued, "no token should be consumed on a rejected spray")
		})
	}
}

func TestDistributionService_CreateSpray_ReleasesTokenOnFailure(t *testing.T) {
	rooms := &fakeMembershipChecker{members: map[string][]uint{"room-1": {1}}}
	wallets := &fakeWalletReader{wallets: map[uint]domain.Wallet{1: {UserID: 1, Balance: 10000}}}
	allocator := &fakeAllocator{code: "XY9"}
	repo := &fakeDistributionRepo{
		createFn: func(_ context.Context, _ domain.Distribution, _ []int64) (domain.Distribution, error) {
			return domain.Distribution{}, errors.New("insert failed")
		},
	}

	svc := newTestService(t, repo, wallets, rooms, allocator)

	_, err := svc.CreateSpray(context.Background(), 1, "room-1", 1000, 2)
	assert.ErrorIs(t, err, ErrDistributionCreation)
	assert.Equal(t, []string{"XY9"}, allocator.released)
}

func TestDistributionService_SubmitClaim(t *testing.T) {
	now := time.Now().UTC()
	dist := domain.Distribution{
		ID:         7,
		Token:      "AB3",
		CreatorID:  1,
		ChatRoomID: "room-1",
		CreatedAt:  now.Add(-time.Minute),
	}

	rooms := &fakeMembershipChecker{members: map[string][]uint{"room-1": {1, 2}}}
	repo := &fakeDistributionRepo{
		findByTokenAndRoomFn: func(_ context.Context, code, roomID string) (domain.Distribution, error) {
			if code != "AB3" || roomID != "room-1" {
				return domain.Distribution{}, repository.ErrDistributionNotFound
			}
			return dist, nil
		},
		claimShareFn: func(_ context.Context, _ string, _ uint, _ string, _ time.Time) (int64, error) {
			return 1667, nil
		},
	}

	svc := newTestService(t, repo, nil, rooms, &fakeAllocator{})

	amount, err := svc.SubmitClaim(context.Background(), "AB3", 2, "room-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1667), amount)
}

func TestDistributionService_SubmitClaim_Rejections(t *testing.T) {
	now := time.Now().UTC()
	rooms := &fakeMembershipChecker{members: map[string][]uint{"room-1": {1, 2, 3}}}

	newRepo := func(dist domain.Distribution, claimed bool, claimErr error) *fakeDistributionRepo {
		return &fakeDistributionRepo{
			findByTokenAndRoomFn: func(_ context.Context, code, roomID string) (domain.Distribution, error) {
				if code != dist.Token || roomID != dist.ChatRoomID {
					return domain.Distribution{}, repository.ErrDistributionNotFound
				}
				return dist, nil
			},
			hasClaimedFn: func(_ context.Context, _, _ uint) (bool, error) {
				return claimed, nil
			},
			claimShareFn: func(_ context.Context, _ string, _ uint, _ string, _ time.Time) (int64, error) {
				if claimErr != nil {
					return 0, claimErr
				}
				return 100, nil
			},
		}
	}

	open := domain.Distribution{ID: 7, Token: "AB3", CreatorID: 1, ChatRoomID: "room-1", CreatedAt: now.Add(-time.Minute)}
	lapsed := open
	lapsed.CreatedAt = now.Add(-domain.ClaimWindow - time.Minute)

	tests := []struct {
		name    string
		repo    *fakeDistributionRepo
		code    string
		userID  uint
		roomID  string
		wantErr error
	}{
		{"not a room member", newRepo(open, false, nil), "AB3", 9, "room-1", ErrNotRoomMember},
		{"unknown token", newRepo(open, false, nil), "ZZZ", 2, "room-1", ErrInvalidToken},
		{"wrong room", newRepo(open, false, nil), "AB3", 2, "room-2", ErrNotRoomMember},
		{"creator claims own spray", newRepo(open, false, nil), "AB3", 1, "room-1", ErrSelfClaim},
		{"window expired", newRepo(lapsed, false, nil), "AB3", 2, "room-1", ErrClaimWindowExpired},
		{"already claimed", newRepo(open, true, nil), "AB3", 2, "room-1", ErrAlreadyClaimed},
		{"no shares left", newRepo(open, false, repository.ErrNoSharesLeft), "AB3", 2, "room-1", ErrNoSharesLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.repo, nil, rooms, &fakeAllocator{})

			_, err := svc.SubmitClaim(context.Background(), tt.code, tt.userID, tt.roomID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDistributionService_LookupSpray(t *testing.T) {
	now := time.Now().UTC()
	receiver2 := uint(2)
	receiver3 := uint(3)
	dist := domain.Distribution{
		ID:          7,
		Token:       "AB3",
		CreatorID:   1,
		ChatRoomID:  "room-1",
		TotalAmount: 5000,
		CreatedAt:   now.Add(-time.Hour),
	}

	repo := &fakeDistributionRepo{
		findByTokenFn: func(_ context.Context, code string) (domain.Distribution, error) {
			if code != "AB3" {
				return domain.Distribution{}, repository.ErrDistributionNotFound
			}
			return dist, nil
		},
		listSharesFn: func(_ context.Context, _ uint) ([]domain.Share, error) {
			return []domain.Share{
				{AllocatedAmount: 1667, ReceiverID: &receiver2},
				{AllocatedAmount: 1667, ReceiverID: &receiver3},
				{AllocatedAmount: 1666},
			}, nil
		},
	}

	svc := newTestService(t, repo, nil, &fakeMembershipChecker{}, &fakeAllocator{active: true})

	status, err := svc.LookupSpray(context.Background(), "AB3", 1)
	require.NoError(t, err)

	assert.Equal(t, int64(5000), status.SprayAmount)
	assert.Equal(t, int64(3334), status.ReceivedAmount)
	require.Len(t, status.ReceivedList, 2)
	assert.Equal(t, uint(2), status.ReceivedList[0].UserID)
	assert.Equal(t, int64(1667), status.ReceivedList[0].Amount)
}

func TestDistributionService_LookupSpray_Rejections(t *testing.T) {
	now := time.Now().UTC()
	fresh := domain.Distribution{ID: 7, Token: "AB3", CreatorID: 1, CreatedAt: now.Add(-time.Hour)}
	ancient := fresh
	ancient.CreatedAt = now.Add(-domain.LookupWindow - time.Hour)

	tests := []struct {
		name        string
		dist        domain.Distribution
		active      bool
		requesterID uint
		wantErr     error
	}{
		{"inactive token", fresh, false, 1, ErrInvalidToken},
		{"not the creator", fresh, true, 2, ErrNotCreator},
		{"past the lookup window", ancient, true, 1, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeDistributionRepo{
				findByTokenFn: func(_ context.Context, _ string) (domain.Distribution, error) {
					return tt.dist, nil
				},
				listSharesFn: func(_ context.Context, _ uint) ([]domain.Share, error) {
					return nil, nil
				},
			}
			svc := newTestService(t, repo, nil, &fakeMembershipChecker{}, &fakeAllocator{active: tt.active})

			_, err := svc.LookupSpray(context.Background(), "AB3", tt.requesterID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
