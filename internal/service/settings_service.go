package service

import (
	"context"

	"connectsphere/internal/model"
	"connectsphere/internal/repository"
	"connectsphere/pkg/errs"
)

// SettingsInput nil fields keep their stored value.
type SettingsInput struct {
	Theme         *string `json:"theme"`
	Notifications *bool   `json:"notifications"`
	Language      *string `json:"language"`
}

type SettingsService struct {
	settings *repository.SettingsRepository
}

func NewSettingsService(settings *repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get creates the defaults on first access.
func (s *SettingsService) Get(ctx context.Context, username string) (*model.UserSettings, error) {
	if username == "" {
		return nil, errs.Invalid("username is required")
	}
	return s.settings.GetOrCreate(ctx, username)
}

func (s *SettingsService) Update(ctx context.Context, username string, in SettingsInput) (*model.UserSettings, error) {
	current, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if in.Theme != nil {
		switch *in.Theme {
		case "light", "dark":
			current.Theme = *in.Theme
		default:
			return nil, errs.Invalid("invalid theme %q", *in.Theme)
		}
	}
	if in.Notifications != nil {
		current.Notifications = *in.Notifications
	}
	if in.Language != nil && *in.Language != "" {
		current.Language = *in.Language
	}
	if err := s.settings.Update(ctx, current); err != nil {
		return nil, err
	}
	return s.settings.GetOrCreate(ctx, username)
}
