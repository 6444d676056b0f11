package service

import (
	"context"

	"connectsphere/internal/model"
	"connectsphere/internal/repository"
	"connectsphere/pkg/errs"
)

// activityPageSize newest activities returned per listing
const activityPageSize = 50

type ActivityService struct {
	activities *repository.ActivityRepository
}

func NewActivityService(activities *repository.ActivityRepository) *ActivityService {
	return &ActivityService{activities: activities}
}

func (s *ActivityService) List(ctx context.Context, username string) ([]model.Activity, error) {
	if username == "" {
		return nil, errs.Invalid("username is required")
	}
	return s.activities.ListForUser(ctx, username, activityPageSize)
}

// Create records an activity by hand, e.g. a reaction or a team add.
func (s *ActivityService) Create(ctx context.Context, a *model.Activity) error {
	if a.TargetUser == "" {
		return errs.Invalid("targetUser is required")
	}
	if !model.ValidActivityType(a.Type) {
		return errs.Invalid("invalid activity type %q", a.Type)
	}
	a.ID = 0
	a.Read = false
	return s.activities.Create(ctx, a)
}

// MarkRead flags one of username's activities as read. Activities addressed
// to someone else are refused.
func (s *ActivityService) MarkRead(ctx context.Context, username string, id uint) error {
	a, err := s.activities.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.TargetUser != username {
		return errs.Forbidden("activity %d belongs to another user", id)
	}
	return s.activities.MarkRead(ctx, id)
}

func (s *ActivityService) MarkAllRead(ctx context.Context, username string) (int64, error) {
	if username == "" {
		return 0, errs.Invalid("username is required")
	}
	return s.activities.MarkAllRead(ctx, username)
}
