package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

// Service exposes authentication workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (AuthResponse, error)
	Profile(ctx context.Context, userID int64) (UserView, error)
	RefreshToken(ctx context.Context, userID int64) (AuthResponse, error)
}

type service struct {
	repo   Repository
	hasher *PasswordHasher
	codec  *TokenCodec
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, hasher *PasswordHasher, codec *TokenCodec, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		codec:  codec,
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return AuthResponse{}, apperrors.Wrap(CodeInvalidInput, "name, email, and password are required", nil)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AuthResponse{}, apperrors.Wrap(CodeInvalidInput, "invalid email address", nil)
	}
	if err := validatePassword(req.Password); err != nil {
		return AuthResponse{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
	}
	_, exists, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return AuthResponse{}, apperrors.Wrap(CodeInternal, "failed to check user", err)
	}
	if exists {
		return AuthResponse{}, apperrors.Wrap(CodeDuplicateEmail, "user with this email already exists", nil)
	}
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AuthResponse{}, err
	}
	user, err := s.repo.Create(ctx, name, email, hashed)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return AuthResponse{}, apperrors.Wrap(CodeDuplicateEmail, "user with this email already exists", nil)
		}
		return AuthResponse{}, apperrors.Wrap(CodeInternal, "failed to create user", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return s.buildAuthResponse(ctx, user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return AuthResponse{}, apperrors.Wrap(CodeInvalidInput, "email and password are required", nil)
	}
	user, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return AuthResponse{}, apperrors.Wrap(CodeInternal, "failed to fetch user", err)
	}
	if !found {
		s.hasher.Burn(req.Password)
		s.logger.Debug("login rejected", "reason", "unknown_email")
		return AuthResponse{}, errInvalidCredentials()
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.logger.Debug("login rejected", "reason", "password_mismatch", "user_id", user.ID)
		return AuthResponse{}, errInvalidCredentials()
	}
	return s.buildAuthResponse(ctx, user)
}

func (s *service) Profile(ctx context.Context, userID int64) (UserView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return toView(user), nil
}

func (s *service) RefreshToken(ctx context.Context, userID int64) (AuthResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return AuthResponse{}, err
	}
	return s.buildAuthResponse(ctx, user)
}

func (s *service) loadUser(ctx context.Context, userID int64) (User, error) {
	if userID <= 0 {
		return User{}, apperrors.Wrap(CodeNotFound, "user not found", nil)
	}
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, apperrors.Wrap(CodeInternal, "failed to load user", err)
	}
	if !found {
		return User{}, apperrors.Wrap(CodeNotFound, "user not found", nil)
	}
	return user, nil
}

// buildAuthResponse refuses to sign once the request has been abandoned.
func (s *service) buildAuthResponse(ctx context.Context, user User) (AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return AuthResponse{}, apperrors.Wrap(CodeInternal, "request cancelled", err)
	}
	view := toView(user)
	token, claims, err := s.codec.Issue(view)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		User:      view,
	}, nil
}

func toView(user User) UserView {
	return UserView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// normalizeEmail trims whitespace only; uniqueness is an exact, case-sensitive match.
func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}
	if addr.Address != email {
		return "", errors.New("email must be a bare address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}
