package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"daylog/internal/domain"
	"daylog/internal/metrics"
	"daylog/internal/repository"
)

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, viewer domain.Viewer, in domain.UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, viewer domain.Viewer, current, next string) error
}

// UserOptions configures registration and credential handling.
type UserOptions struct {
	// RegisterSecret, when set, must be supplied by every registration.
	RegisterSecret string
	// CaseSensitive keeps usernames as typed; otherwise they are lower-cased.
	CaseSensitive bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type userService struct {
	users repository.UserRepository
	opts  UserOptions

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(users repository.UserRepository, opts UserOptions) UserService {
	opts.RegisterSecret = strings.TrimSpace(opts.RegisterSecret)
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users: users,
		opts:  opts,
	}
}

func (s *userService) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		metrics.RecordAuthAttempt("register", "invalid")
		return nil, err
	}
	if s.opts.RegisterSecret != "" &&
		subtle.ConstantTimeCompare([]byte(in.RegisterSecret), []byte(s.opts.RegisterSecret)) != 1 {
		metrics.RecordAuthAttempt("register", "bad_secret")
		return nil, domain.ErrInvalidRegistrationSecret
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     s.normalize(in.Username),
		PasswordHash: string(hash),
		DisplayName:  in.DisplayName,
		Bio:          in.Bio,
	}
	if user.DisplayName == "" {
		user.DisplayName = in.Username
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			metrics.RecordAuthAttempt("register", "duplicate")
			return nil, domain.ErrDuplicateUsername
		}
		return nil, err
	}

	metrics.RecordAuthAttempt("register", "ok")
	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = s.normalize(strings.TrimSpace(username))
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		metrics.RecordAuthAttempt("login", "invalid")
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// burn the same bcrypt work as a real comparison
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			metrics.RecordAuthAttempt("login", "invalid")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.RecordAuthAttempt("login", "invalid")
		return nil, domain.ErrInvalidCredentials
	}

	metrics.RecordAuthAttempt("login", "ok")
	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, viewer domain.Viewer, in domain.UpdateProfileInput) (*domain.User, error) {
	if !viewer.Authenticated() {
		return nil, domain.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		user.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if err := s.users.UpdateProfile(ctx, user.ID, user.DisplayName, user.Bio); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, user.ID)
}

func (s *userService) ChangePassword(ctx context.Context, viewer domain.Viewer, current, next string) error {
	if !viewer.Authenticated() {
		return domain.ErrForbidden
	}
	next = strings.TrimSpace(next)
	if err := domain.ValidatePassword("new_password", next); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, viewer.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(current))); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

func (s *userService) normalize(username string) string {
	if s.opts.CaseSensitive {
		return username
	}
	return strings.ToLower(username)
}

func (s *userService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("daylog-unknown-user"), s.opts.BcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
