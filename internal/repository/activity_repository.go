package repository

import (
	"context"

	"connectsphere/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	orm *gorm.DB
}

func NewActivityRepository(orm *gorm.DB) *ActivityRepository {
	return &ActivityRepository{orm: orm}
}

func (r *ActivityRepository) Create(ctx context.Context, a *model.Activity) error {
	return translate(r.orm.WithContext(ctx).Create(a).Error, "activity")
}

// CreateBatch stores every activity in one transaction.
func (r *ActivityRepository) CreateBatch(ctx context.Context, activities []*model.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	err := r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(activities).Error
	})
	return translate(err, "activity")
}

// ListForUser newest first.
func (r *ActivityRepository) ListForUser(ctx context.Context, username string, limit int) ([]model.Activity, error) {
	var out []model.Activity
	err := r.orm.WithContext(ctx).
		Where("target_user = ?", username).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err, "activity")
}

func (r *ActivityRepository) Get(ctx context.Context, id uint) (*model.Activity, error) {
	var a model.Activity
	if err := r.orm.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err, "activity")
	}
	return &a, nil
}

// MarkRead sets read on one activity; repeating it changes nothing.
func (r *ActivityRepository) MarkRead(ctx context.Context, id uint) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	err := r.orm.WithContext(ctx).Model(&model.Activity{}).Where("id = ?", id).Update("read", true).Error
	return translate(err, "activity")
}

// MarkAllRead returns the number of activities that were unread.
func (r *ActivityRepository) MarkAllRead(ctx context.Context, username string) (int64, error) {
	res := r.orm.WithContext(ctx).Model(&model.Activity{}).
		Where(map[string]interface{}{"target_user": username, "read": false}).
		Update("read", true)
	return res.RowsAffected, translate(res.Error, "activity")
}

