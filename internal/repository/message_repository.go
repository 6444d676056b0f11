package repository

import (
	"context"

	"connectsphere/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	orm *gorm.DB
}

func NewMessageRepository(orm *gorm.DB) *MessageRepository {
	return &MessageRepository{orm: orm}
}

// Create assigns msg.ID and msg.CreatedAt.
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return translate(r.orm.WithContext(ctx).Create(msg).Error, "message")
}

// History returns the latest limit messages of room, oldest first.
func (r *MessageRepository) History(ctx context.Context, room string, limit int) ([]model.Message, error) {
	var msgs []model.Message
	err := r.orm.WithContext(ctx).
		Where("room = ?", room).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, translate(err, "message")
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// DeleteByRoom clears the room history and reports how many rows went.
func (r *MessageRepository) DeleteByRoom(ctx context.Context, room string) (int64, error) {
	res := r.orm.WithContext(ctx).Where("room = ?", room).Delete(&model.Message{})
	return res.RowsAffected, translate(res.Error, "message")
}
