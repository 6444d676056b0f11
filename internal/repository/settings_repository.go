package repository

import (
	"context"
	"errors"

	"connectsphere/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	orm *gorm.DB
}

func NewSettingsRepository(orm *gorm.DB) *SettingsRepository {
	return &SettingsRepository{orm: orm}
}

// GetOrCreate returns the stored settings, inserting the defaults first when missing.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, username string) (*model.UserSettings, error) {
	var s model.UserSettings
	err := r.orm.WithContext(ctx).Where("username = ?", username).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, "settings")
	}

	defaults := model.DefaultSettings(username)
	err = r.orm.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(defaults).Error
	if err != nil {
		return nil, translate(err, "settings")
	}
	if err := r.orm.WithContext(ctx).Where("username = ?", username).First(&s).Error; err != nil {
		return nil, translate(err, "settings")
	}
	return &s, nil
}

// Update writes theme, notifications and language of s.Username.
func (r *SettingsRepository) Update(ctx context.Context, s *model.UserSettings) error {
	err := r.orm.WithContext(ctx).Model(&model.UserSettings{}).
		Where("username = ?", s.Username).
		Select("theme", "notifications", "language").
		Updates(s).Error
	return translate(err, "settings")
}
