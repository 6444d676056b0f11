package service

import (
	"context"
	"errors"
	"strings"

	"connectsphere/internal/model"
	"connectsphere/internal/repository"
	"connectsphere/pkg/errs"
)

type SpeedDialService struct {
	users      *repository.UserRepository
	speedDials *repository.SpeedDialRepository
}

func NewSpeedDialService(users *repository.UserRepository, speedDials *repository.SpeedDialRepository) *SpeedDialService {
	return &SpeedDialService{users: users, speedDials: speedDials}
}

func (s *SpeedDialService) owner(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

// List contacts in speed dial order with their current status.
func (s *SpeedDialService) List(ctx context.Context, username string) ([]model.SpeedDialContact, error) {
	u, err := s.owner(ctx, username)
	if err != nil {
		return nil, err
	}
	entries, err := s.speedDials.ListForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.ContactUsername)
	}
	statuses, err := s.users.StatusByUsername(ctx, names)
	if err != nil {
		return nil, err
	}

	out := make([]model.SpeedDialContact, 0, len(entries))
	for _, e := range entries {
		status, ok := statuses[e.ContactUsername]
		if !ok {
			status = model.StatusOffline
		}
		out = append(out, model.SpeedDialContact{ID: e.ID, Username: e.ContactUsername, Status: status, Order: e.Order})
	}
	return out, nil
}

// Add appends contact; unknown contacts and repeats are rejected.
func (s *SpeedDialService) Add(ctx context.Context, username, contact string) (*model.SpeedDial, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return nil, errs.Invalid("contactUsername is required")
	}
	if contact == username {
		return nil, errs.Invalid("cannot add yourself to speed dial")
	}
	u, err := s.owner(ctx, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, contact); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("contact not found")
		}
		return nil, err
	}

	sd := &model.SpeedDial{UserID: u.ID, ContactUsername: contact}
	if err := s.speedDials.Append(ctx, sd); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, errs.Conflict("already in speed dial")
		}
		return nil, err
	}
	return sd, nil
}

func (s *SpeedDialService) Remove(ctx context.Context, username string, id uint) error {
	u, err := s.owner(ctx, username)
	if err != nil {
		return err
	}
	return s.speedDials.Delete(ctx, u.ID, id)
}
