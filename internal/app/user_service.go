package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

// UserRepository stores user records. CreateUser reports a taken username or
// email as domain.ErrUserExists; lookups report domain.ErrUserNotFound.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

// UserService manages the user directory used for display names.
type UserService struct {
	users       UserRepository
	submissions SubmissionStore
	now         func() time.Time
}

func NewUserService(users UserRepository, submissions SubmissionStore) *UserService {
	return &UserService{users: users, submissions: submissions, now: time.Now}
}

// CreateUser registers a new user.
func (s *UserService) CreateUser(ctx context.Context, username, email string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return domain.User{}, fmt.Errorf("%w: username and email are required", domain.ErrInvalidUser)
	}
	if !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: invalid email format", domain.ErrInvalidUser)
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// GetMe returns the user with all of their submissions.
func (s *UserService) GetMe(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	subs, err := s.submissions.ListSubmissions(ctx, domain.SubmissionFilter{UserID: userID})
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{User: user, Submissions: subs}, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.users.FindByUsername(ctx, strings.TrimSpace(username))
}
