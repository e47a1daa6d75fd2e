package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zbd0329/money-distributor/internal/repository"
)

var ErrMemberExists = repository.ErrMemberExists

type RoomRepository interface {
	CreateRoom(ctx context.Context, name string) (string, error)
	AddMember(ctx context.Context, roomID string, userID uint) error
	IsMember(ctx context.Context, roomID string, userID uint) (bool, error)
}

// RoomService manages the chat rooms distributions run inside of.
type RoomService struct {
	repo RoomRepository
}

func NewRoomService(repo RoomRepository) *RoomService {
	return &RoomService{
		repo: repo,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, name string, creatorID uint) (string, error) {
	roomID, err := s.repo.CreateRoom(ctx, name)
	if err != nil {
		return "", fmt.Errorf("s.repo.CreateRoom -> %w", err)
	}

	if err = s.repo.AddMember(ctx, roomID, creatorID); err != nil {
		return "", fmt.Errorf("s.repo.AddMember -> %w", err)
	}

	return roomID, nil
}

func (s *RoomService) JoinRoom(ctx context.Context, roomID string, userID uint) error {
	if err := s.repo.AddMember(ctx, roomID, userID); err != nil {
		if errors.Is(err, ErrMemberExists) {
			return ErrMemberExists
		}
		return fmt.Errorf("s.repo.AddMember -> %w", err)
	}

	return nil
}
