package repository

import (
	"context"

	"connectsphere/internal/model"

	"gorm.io/gorm"
)

type SpeedDialRepository struct {
	orm *gorm.DB
}

func NewSpeedDialRepository(orm *gorm.DB) *SpeedDialRepository {
	return &SpeedDialRepository{orm: orm}
}

// ListForUser ordered by position.
func (r *SpeedDialRepository) ListForUser(ctx context.Context, userID uint) ([]model.SpeedDial, error) {
	var out []model.SpeedDial
	err := r.orm.WithContext(ctx).Where("user_id = ?", userID).Order("sort_order ASC").Order("id ASC").Find(&out).Error
	return out, translate(err, "speed dial")
}

// Append stores the contact at the end of the user's list; a repeat is errs.ErrConflict.
func (r *SpeedDialRepository) Append(ctx context.Context, sd *model.SpeedDial) error {
	err := r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.SpeedDial{}).Where("user_id = ?", sd.UserID).Count(&n).Error; err != nil {
			return err
		}
		sd.Order = int(n)
		return tx.Create(sd).Error
	})
	return translate(err, "speed dial entry")
}

// Delete scoped to the owner so one user cannot remove another's entry.
func (r *SpeedDialRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.orm.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.SpeedDial{})
	if res.Error != nil {
		return translate(res.Error, "speed dial entry")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "speed dial entry")
	}
	return nil
}
