package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"recipebox/internal/models"
	"recipebox/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies credentials and manages opaque bearer tokens.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// Authenticate verifies an email/password pair. Unknown email, wrong
// password, empty password, and an inactive account all return the same
// ErrInvalidCredentials so callers cannot tell which emails exist.
func (s *AuthService) Authenticate(email, password string) (*models.User, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken authenticates the credentials and, on success, stores and
// returns a fresh opaque token key. Earlier tokens for the user stay valid.
func (s *AuthService) IssueToken(email, password string) (string, error) {
	user, err := s.Authenticate(email, password)
	if err != nil {
		return "", err
	}

	key, err := generateTokenKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := &models.Token{
		Key:    key,
		UserID: user.ID,
	}
	if err := s.tokenRepo.Create(token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return key, nil
}

// ResolveToken maps a bearer token key back to its user. Any failure along
// the way surfaces as ErrInvalidToken.
func (s *AuthService) ResolveToken(key string) (*models.User, error) {
	if key == "" {
		return nil, ErrInvalidToken
	}
	token, err := s.tokenRepo.GetByKey(key)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(token.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// RevokeToken deletes a token so it can no longer be resolved.
func (s *AuthService) RevokeToken(key string) error {
	return s.tokenRepo.DeleteByKey(key)
}

// generateTokenKey returns 20 random bytes hex-encoded, a 40 character key.
func generateTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
