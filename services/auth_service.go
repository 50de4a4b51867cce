//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"fmt"
	"time"

	"intent-chat/auth"
	"intent-chat/errors"
	"intent-chat/repositories"
)

type IAuthService interface {
	Register(username, password string) (Token, error)
	Login(username, password string) (Token, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	initialTokens  int64
	tokenDuration  time.Duration
}

type Token string

func NewAuthService(repo repositories.IUserRepository, initialTokens int64, tokenDuration time.Duration) IAuthService {
	return &AuthService{
		userRepository: repo,
		initialTokens:  initialTokens,
		tokenDuration:  tokenDuration,
	}
}

func (s *AuthService) Register(username, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Password: password,
	}

	// 1. Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", err
	}

	// 2. Hash the password with Argon2id.
	// Done here so the repository never sees a plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with its initial token credit.
	userID, err := s.userRepository.CreateUser(username, hashedPassword, s.initialTokens)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists when the name is taken
	}

	// 4. Issue the initial session token.
	token, err := auth.GenerateToken(userID, []string{"user"}, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

func (s *AuthService) Login(username, password string) (Token, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Roles, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
