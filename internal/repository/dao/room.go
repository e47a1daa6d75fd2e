package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrMemberExists = errors.New("user is already a member of the chat room")

// ChatRoom and ChatRoomMember model the chat platform's room tables. The
// distribution core only reads them for membership checks.
type ChatRoom struct {
	ID        string `gorm:"primaryKey;size:36"`
	RoomName  string `gorm:"size:100"`
	CreatedAt time.Time
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

type ChatRoomMember struct {
	ID         uint   `gorm:"primaryKey"`
	ChatRoomID string `gorm:"size:36;not null;uniqueIndex:uq_chatroom_user"`
	UserID     uint      `gorm:"not null;uniqueIndex:uq_chatroom_user"`
	JoinedAt   time.Time `gorm:"autoCreateTime"`
}

func (ChatRoomMember) TableName() string {
	return "chat_room_members"
}

type RoomDAO struct {
	db *gorm.DB
}

func NewRoomDAO(db *gorm.DB) *RoomDAO {
	return &RoomDAO{
		db: db,
	}
}

func (d *RoomDAO) Insert(ctx context.Context, room ChatRoom) (ChatRoom, error) {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}

	result := d.db.WithContext(ctx).Create(&room)
	if result.Error != nil {
		return ChatRoom{}, result.Error
	}

	return room, nil
}

func (d *RoomDAO) AddMember(ctx context.Context, roomID string, userID uint) error {
	member := ChatRoomMember{
		ChatRoomID: roomID,
		UserID:     userID,
	}

	result := d.db.WithContext(ctx).Create(&member)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return ErrMemberExists
		}

		return result.Error
	}

	return nil
}

func (d *RoomDAO) IsMember(ctx context.Context, roomID string, userID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&ChatRoomMember{}).
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
