package repository

import (
	"context"

	"connectsphere/internal/model"

	"gorm.io/gorm"
)

type CallRepository struct {
	orm *gorm.DB
}

func NewCallRepository(orm *gorm.DB) *CallRepository {
	return &CallRepository{orm: orm}
}

func (r *CallRepository) Create(ctx context.Context, call *model.CallHistory) error {
	return translate(r.orm.WithContext(ctx).Create(call).Error, "call")
}

func (r *CallRepository) Get(ctx context.Context, id uint) (*model.CallHistory, error) {
	var c model.CallHistory
	if err := r.orm.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "call")
	}
	return &c, nil
}

// ListForUser calls placed or received by username, newest first.
func (r *CallRepository) ListForUser(ctx context.Context, username string, limit int) ([]model.CallHistory, error) {
	var calls []model.CallHistory
	err := r.orm.WithContext(ctx).
		Where("caller_username = ? OR receiver_username = ?", username, username).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&calls).Error
	return calls, translate(err, "call")
}

func (r *CallRepository) UpdateDuration(ctx context.Context, id uint, duration string) error {
	err := r.orm.WithContext(ctx).Model(&model.CallHistory{}).Where("id = ?", id).Update("duration", duration).Error
	return translate(err, "call")
}
