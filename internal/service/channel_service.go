package service

import (
	"context"
	"errors"
	"strings"

	"connectsphere/internal/model"
	"connectsphere/internal/repository"
	"connectsphere/pkg/errs"
	"connectsphere/pkg/logger"

	"go.uber.org/zap"
)

// MemberView is a channel member with the user's current status.
type MemberView struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type ChannelService struct {
	channels *repository.ChannelRepository
	members  *repository.MemberRepository
	users    *repository.UserRepository
}

func NewChannelService(channels *repository.ChannelRepository, members *repository.MemberRepository, users *repository.UserRepository) *ChannelService {
	return &ChannelService{channels: channels, members: members, users: users}
}

// List seeds General and Random on an empty store.
func (s *ChannelService) List(ctx context.Context) ([]model.Channel, error) {
	channels, err := s.channels.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(channels) > 0 {
		return channels, nil
	}
	if err := s.channels.Ensure(ctx, model.SystemUser, model.GeneralChannel, model.RandomChannel); err != nil {
		return nil, err
	}
	return s.channels.List(ctx)
}

// CreateChannelInput body of a channel creation
type CreateChannelInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	IsPrivate   bool   `json:"isPrivate"`
}

// Create makes createdBy the channel admin; without a creator the channel belongs to system.
func (s *ChannelService) Create(ctx context.Context, in CreateChannelInput) (*model.Channel, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Invalid("channel name is required")
	}
	if model.IsDirectRoom(name) {
		return nil, errs.Invalid("channel name may not start with dm_")
	}

	ch := &model.Channel{
		Name:        name,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
		IsPrivate:   in.IsPrivate,
	}
	if ch.CreatedBy == "" {
		ch.CreatedBy = model.SystemUser
	}

	if err := s.channels.Create(ctx, ch, in.CreatedBy); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, errs.Conflict("channel exists")
		}
		return nil, err
	}
	logger.Info("channel created", zap.String("channel", name), zap.String("created_by", ch.CreatedBy))
	return ch, nil
}

// Rename moves members and message history along with the channel.
func (s *ChannelService) Rename(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errs.Invalid("newName is required")
	}
	if newName == oldName {
		return nil
	}
	if model.IsDirectRoom(newName) {
		return errs.Invalid("channel name may not start with dm_")
	}
	if err := s.channels.Rename(ctx, oldName, newName); err != nil {
		switch {
		case errors.Is(err, errs.ErrConflict):
			return errs.Conflict("channel exists")
		case errors.Is(err, errs.ErrNotFound):
			return errs.NotFound("channel not found")
		}
		return err
	}
	logger.Info("channel renamed", zap.String("from", oldName), zap.String("to", newName))
	return nil
}

// Delete drops the channel with its memberships and messages.
func (s *ChannelService) Delete(ctx context.Context, name string) error {
	if err := s.channels.Delete(ctx, name); err != nil {
		return err
	}
	logger.Info("channel deleted", zap.String("channel", name))
	return nil
}

// Members lists members with their status; unknown users show as offline.
func (s *ChannelService) Members(ctx context.Context, channel string) ([]MemberView, error) {
	members, err := s.members.ListByChannel(ctx, channel)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Username)
	}
	statuses, err := s.users.StatusByUsername(ctx, names)
	if err != nil {
		return nil, err
	}

	out := make([]MemberView, 0, len(members))
	for _, m := range members {
		status, ok := statuses[m.Username]
		if !ok {
			status = model.StatusOffline
		}
		out = append(out, MemberView{Username: m.Username, Role: m.Role, Status: status})
	}
	return out, nil
}

// AddMember a repeated add is a conflict.
func (s *ChannelService) AddMember(ctx context.Context, channel, username, role string) (*model.ChannelMember, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.Invalid("username is required")
	}
	switch role {
	case "":
		role = model.RoleMember
	case model.RoleAdmin, model.RoleMember:
	default:
		return nil, errs.Invalid("invalid role %q", role)
	}

	m := &model.ChannelMember{Channel: channel, Username: username, Role: role}
	if err := s.members.Add(ctx, m); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, errs.Conflict("already a member")
		}
		return nil, err
	}
	return m, nil
}

func (s *ChannelService) RemoveMember(ctx context.Context, channel, username string) error {
	return s.members.Remove(ctx, channel, username)
}
