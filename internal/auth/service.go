package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database/users"
	"github.com/mrlokans/readinglog/internal/entities"
)

const MaxUsernameLength = 64

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameInvalid  = fmt.Errorf("username must be at most %d characters without control characters", MaxUsernameLength)
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetOrCreateUser(username string) (*entities.User, bool, error)
	GetUserByID(id uint) (*entities.User, error)
}

type loginForm struct {
	Username string `validate:"required,max=64"`
}

// Service resolves usernames to users.
type Service struct {
	users    UserRepository
	config   config.Auth
	validate *validator.Validate
}

// NewService creates a new authentication service.
func NewService(repo UserRepository, cfg config.Auth) *Service {
	return &Service{
		users:    repo,
		config:   cfg,
		validate: validator.New(),
	}
}

// Login returns the user with the given username, creating it on first
// login. There is no credential check. The created flag reports whether a
// new user was made.
func (s *Service) Login(username string) (*entities.User, bool, error) {
	form := loginForm{Username: strings.TrimSpace(username)}
	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			return nil, false, ErrUsernameRequired
		}
		return nil, false, ErrUsernameInvalid
	}
	if strings.IndexFunc(form.Username, unicode.IsControl) >= 0 {
		return nil, false, ErrUsernameInvalid
	}

	user, created, err := s.users.GetOrCreateUser(form.Username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, created, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// IsAuthEnabled returns true if a login is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}
