package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lnky-dev/lnky/internal/app/model"
	"github.com/lnky-dev/lnky/internal/app/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken signals that an account already uses the email.
	ErrEmailTaken = errors.New("email already in use")
	// ErrUsernameTaken signals that the username is not available.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials signals a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const bcryptCost = 10

// UserService covers account creation, login checks and profile settings.
type UserService interface {
	Signup(ctx context.Context, input SignupInput) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileInput) error
	UpdateColors(ctx context.Context, userID string, input ColorsInput) error
	ClearBackground(ctx context.Context, userID string) error
	ClearCursor(ctx context.Context, userID string) error
}

// SignupInput captures data required to create an account. Username is
// expected pre-validated by the transport layer (length, charset).
type SignupInput struct {
	Email    string
	Password string
	Username string
}

// ProfileInput carries display settings; empty strings clear the field.
type ProfileInput struct {
	DisplayName string
	Bio         string
}

// ColorsInput carries theme colors; empty strings clear the field.
type ColorsInput struct {
	BgColor     string
	TextColor   string
	AccentColor string
}

type userService struct {
	repo      repository.UserRepository
	usernames *UsernameIndex
}

// NewUserService returns a service implementation backed by the given
// repository. The username index may be nil; availability checks then always
// hit the database.
func NewUserService(repo repository.UserRepository, usernames *UsernameIndex) UserService {
	return &userService{repo: repo, usernames: usernames}
}

func (s *userService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	email := strings.TrimSpace(input.Email)
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if email == "" || input.Password == "" || username == "" {
		return nil, fmt.Errorf("%w: email, password and username are required", ErrInvalidInput)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := username
	user := &model.User{
		ID:          uuid.New().String(),
		Email:       email,
		Username:    username,
		Password:    string(hashed),
		DisplayName: &displayName,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.usernames != nil {
		s.usernames.Add(username)
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// CheckUsername reports whether username is free. The bloom index answers
// the common "definitely free" case without a database round trip; only
// possible hits fall through to the store.
func (s *userService) CheckUsername(ctx context.Context, username string) (bool, error) {
	name := strings.ToLower(strings.TrimSpace(username))
	if name == "" {
		return false, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	if s.usernames != nil && !s.usernames.MightExist(name) {
		return true, nil
	}

	_, err := s.repo.GetByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return false, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return s.update(ctx, userID, map[string]interface{}{
		"display_name": nullable(input.DisplayName),
		"bio":          nullable(input.Bio),
	})
}

func (s *userService) UpdateColors(ctx context.Context, userID string, input ColorsInput) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return s.update(ctx, userID, map[string]interface{}{
		"bg_color":     nullable(input.BgColor),
		"text_color":   nullable(input.TextColor),
		"accent_color": nullable(input.AccentColor),
	})
}

func (s *userService) ClearBackground(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return s.update(ctx, userID, map[string]interface{}{"background_url": nil})
}

func (s *userService) ClearCursor(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return s.update(ctx, userID, map[string]interface{}{"cursor_url": nil})
}

func (s *userService) update(ctx context.Context, userID string, fields map[string]interface{}) error {
	if err := s.repo.Update(ctx, userID, fields); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// nullable maps empty strings to SQL NULL so cleared settings fall back to
// theme defaults instead of storing "".
func nullable(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
