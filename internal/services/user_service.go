package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskdeck/internal/models"
	"taskdeck/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrUsernameTaken      = errors.New("username already exists")
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetProfile(ctx context.Context, id int64) (*models.ProfileResponse, error)
	UpdateProfile(ctx context.Context, id int64, req models.UpdateProfileRequest) (*models.Profile, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
}

type userService struct {
	repo         repositories.UserRepository
	todos        repositories.TodoRepository
	emailService EmailService
}

// NewUserService wires the user logic. emailService may be nil when SMTP is
// not configured.
func NewUserService(repo repositories.UserRepository, todos repositories.TodoRepository, emailService EmailService) UserService {
	return &userService{repo: repo, todos: todos, emailService: emailService}
}

func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Username:       strings.TrimSpace(req.Username),
		ProfilePicture: strings.TrimSpace(req.ProfilePicture),
		PasswordHash:   hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// warn but do not fail registration
			log.Printf("[user][register] warning: welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) GetProfile(ctx context.Context, id int64) (*models.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.todos.Statistics(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &models.ProfileResponse{User: user.Profile(), Statistics: stats}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, req models.UpdateProfileRequest) (*models.Profile, error) {
	p := models.Profile{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		ProfilePicture: strings.TrimSpace(req.ProfilePicture),
	}
	if err := s.repo.UpdateProfile(ctx, id, p); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := user.Profile()
	return &out, nil
}

func (s *userService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}
