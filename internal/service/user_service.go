package service

import (
	"context"
	"errors"
	"strings"

	"connectsphere/internal/model"
	"connectsphere/internal/repository"
	"connectsphere/pkg/errs"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/logger"
	"connectsphere/pkg/password"

	"go.uber.org/zap"
)

// AuthResult is returned by register and login.
type AuthResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type UserService struct {
	users      *repository.UserRepository
	channels   *repository.ChannelRepository
	members    *repository.MemberRepository
	settings   *repository.SettingsRepository
	jwtService *jwt.JWTService
	hasher     *password.Hasher
}

func NewUserService(
	users *repository.UserRepository,
	channels *repository.ChannelRepository,
	members *repository.MemberRepository,
	settings *repository.SettingsRepository,
	jwtService *jwt.JWTService,
	hasher *password.Hasher,
) *UserService {
	return &UserService{
		users:      users,
		channels:   channels,
		members:    members,
		settings:   settings,
		jwtService: jwtService,
		hasher:     hasher,
	}
}

// Register creates the account with default settings and General membership.
func (s *UserService) Register(ctx context.Context, username, plainPassword string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || plainPassword == "" {
		return nil, errs.Invalid("missing fields")
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Status:       model.StatusOffline,
		AvatarColor:  model.DefaultAvatarColor,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, errs.Conflict("username already exists")
		}
		return nil, err
	}

	if _, err := s.settings.GetOrCreate(ctx, username); err != nil {
		return nil, err
	}
	if err := s.joinGeneral(ctx, username); err != nil {
		return nil, err
	}

	logger.Info("user registered", zap.String("username", username), zap.Uint("user_id", user.ID))
	return s.issue(user)
}

// Login checks the password, marks the user online and back-fills General membership.
func (s *UserService) Login(ctx context.Context, username, plainPassword string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || plainPassword == "" {
		return nil, errs.Invalid("missing fields")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Invalid("user not found")
		}
		return nil, err
	}
	if !s.hasher.Verify(plainPassword, user.PasswordHash) {
		return nil, errs.Invalid("invalid credentials")
	}

	if err := s.users.UpdateStatus(ctx, username, model.StatusOnline); err != nil {
		return nil, err
	}
	if err := s.joinGeneral(ctx, username); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *UserService) joinGeneral(ctx context.Context, username string) error {
	if err := s.channels.Ensure(ctx, model.SystemUser, model.GeneralChannel); err != nil {
		return err
	}
	return s.members.Ensure(ctx, model.GeneralChannel, username, model.RoleMember)
}

func (s *UserService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Username: user.Username}, nil
}

// UserSummary is the directory view of a user.
type UserSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Status      string `json:"status"`
	AvatarColor string `json:"avatarColor"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
}

func (s *UserService) List(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{
			ID:          u.ID,
			Username:    u.Username,
			Status:      u.Status,
			AvatarColor: u.AvatarColor,
			Email:       u.Email,
			Mobile:      u.Mobile,
		})
	}
	return out, nil
}

func (s *UserService) Profile(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, username, email, mobile string) error {
	if _, err := s.Profile(ctx, username); err != nil {
		return err
	}
	return s.users.UpdateProfile(ctx, username, strings.TrimSpace(email), strings.TrimSpace(mobile))
}

func (s *UserService) SetStatus(ctx context.Context, username, status string) error {
	if !model.ValidStatus(status) {
		return errs.Invalid("invalid status %q", status)
	}
	return s.users.UpdateStatus(ctx, username, status)
}

// SendVerificationCode only logs; no mail or SMS provider is wired.
func (s *UserService) SendVerificationCode(_ context.Context, kind, contact string) error {
	if contact == "" {
		return errs.Invalid("contact is required")
	}
	logger.Info("verification code requested", zap.String("type", kind), zap.String("contact", contact))
	return nil
}

// ConfirmVerificationCode accepts any code of four or more characters.
func (s *UserService) ConfirmVerificationCode(ctx context.Context, username, kind, code string) error {
	if len(code) < 4 {
		return errs.Invalid("invalid code")
	}
	if _, err := s.Profile(ctx, username); err != nil {
		return err
	}
	return s.users.SetVerified(ctx, username, kind == "email")
}
