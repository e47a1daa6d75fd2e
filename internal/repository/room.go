package repository

import (
	"context"
	"fmt"

	"github.com/zbd0329/money-distributor/internal/repository/dao"
)

var ErrMemberExists = dao.ErrMemberExists

type RoomDAO interface {
	Insert(ctx context.Context, room dao.ChatRoom) (dao.ChatRoom, error)
	AddMember(ctx context.Context, roomID string, userID uint) error
	IsMember(ctx context.Context, roomID string, userID uint) (bool, error)
}

// RoomRepository fronts the chat platform's room tables. The distribution
// core only ever asks one question of it: membership.
type RoomRepository struct {
	dao RoomDAO
}

func NewRoomRepository(dao RoomDAO) *RoomRepository {
	return &RoomRepository{
		dao: dao,
	}
}

func (r *RoomRepository) CreateRoom(ctx context.Context, name string) (string, error) {
	room, err := r.dao.Insert(ctx, dao.ChatRoom{RoomName: name})
	if err != nil {
		return "", fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return room.ID, nil
}

func (r *RoomRepository) AddMember(ctx context.Context, roomID string, userID uint) error {
	return r.dao.AddMember(ctx, roomID, userID)
}

func (r *RoomRepository) IsMember(ctx context.Context, roomID string, userID uint) (bool, error) {
	isMember, err := r.dao.IsMember(ctx, roomID, userID)
	if err != nil {
		return false, fmt.Errorf("r.dao.IsMember -> %w", err)
	}

	return isMember, nil
}
