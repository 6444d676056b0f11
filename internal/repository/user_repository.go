package repository

import (
	"context"

	"connectsphere/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

// Create fails with errs.ErrConflict when the username is taken.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.orm.WithContext(ctx).Create(user).Error, "user")
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.orm.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, translate(err, "user")
}

// StatusByUsername returns the status of each known username; unknown names are absent.
func (r *UserRepository) StatusByUsername(ctx context.Context, usernames []string) (map[string]string, error) {
	out := make(map[string]string, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}
	var users []model.User
	err := r.orm.WithContext(ctx).
		Select("username", "status").
		Where("username IN ?", usernames).
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	for _, u := range users {
		out[u.Username] = u.Status
	}
	return out, nil
}

// UpdateStatus is a no-op for unknown usernames.
func (r *UserRepository) UpdateStatus(ctx context.Context, username, status string) error {
	err := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Update("status", status).Error
	return translate(err, "user")
}

// UpdateProfile writes email and mobile, empty values included.
func (r *UserRepository) UpdateProfile(ctx context.Context, username, email, mobile string) error {
	res := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Select("email", "mobile").
		Updates(&model.User{Email: email, Mobile: mobile})
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	return nil
}

// SetVerified flips isEmailVerified (email) or isMobileVerified (anything else).
func (r *UserRepository) SetVerified(ctx context.Context, username string, email bool) error {
	column := "is_mobile_verified"
	if email {
		column = "is_email_verified"
	}
	err := r.orm.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Update(column, true).Error
	return translate(err, "user")
}
