package services

import (
	"fmt"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles business logic for account creation and profile
// management. Authorization is the endpoint's responsibility; this service
// trusts that the caller has already been authenticated as the target user.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the domain
// part of the address. The local part keeps its case. Idempotent.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// Register creates a new active user with a hashed password. The plaintext
// password is never stored.
func (s *UserService) Register(email, password, name string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Name:     name,
		Password: string(hashedPassword),
		IsActive: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		// The unique index on email catches races the pre-check missed.
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// RegisterSuperuser creates a user with staff and superuser flags set.
func (s *UserService) RegisterSuperuser(email, password string) (*models.User, error) {
	user, err := s.Register(email, password, "")
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to promote superuser: %w", err)
	}
	return user, nil
}

// UpdateProfile applies only the provided fields to the user. A nil field is
// left untouched; a new password is re-hashed before storage.
func (s *UserService) UpdateProfile(user *models.User, name, password *string) error {
	if name != nil {
		user.Name = *name
	}
	if password != nil {
		if len(*password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashedPassword)
	}
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
