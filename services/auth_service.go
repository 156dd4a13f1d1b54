//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"fmt"
	"time"
)

type IAuthService interface {
	Register(username, password string) (domain.Identity, Token, error)
	Login(username, password string) (domain.Identity, Token, error)
	VerifyToken(token string) (domain.Identity, error)
}

type Token string

func (t Token) String() string {
	return string(t)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokenTTL       time.Duration
}

func NewAuthService(repo repositories.IUserRepository, tokenTTL time.Duration) IAuthService {
	return &AuthService{userRepository: repo, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(username, password string) (domain.Identity, Token, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Password: password,
	}

	// 1. Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.Identity{}, "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id. Done in the service layer to
	// keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user; propagates ErrUserAlreadyExists if the username
	// is taken.
	userID, err := s.userRepository.CreateUser(username, hashedPassword)
	if err != nil {
		return domain.Identity{}, "", err
	}

	identity := domain.Identity{ID: userID, Username: username}

	// 4. Generate the initial session token.
	token, err := auth.GenerateToken(userID, username, s.tokenTTL)
	if err != nil {
		return domain.Identity{}, "", errors.ErrTokenGeneration
	}
	return identity, Token(token), nil
}

func (s *AuthService) Login(username, password string) (domain.Identity, Token, error) {
	// Generic error paths to prevent user enumeration attacks.
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		return domain.Identity{}, "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.Identity{}, "", errors.ErrInvalidCredentials
	}

	identity := domain.Identity{ID: user.ID, Username: user.Username}

	token, err := auth.GenerateToken(user.ID, user.Username, s.tokenTTL)
	if err != nil {
		return domain.Identity{}, "", errors.ErrTokenGeneration
	}
	return identity, Token(token), nil
}

// VerifyToken returns the identity a bearer token encodes, or fails.
func (s *AuthService) VerifyToken(token string) (domain.Identity, error) {
	claims, err := auth.ValidateToken(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	return domain.Identity{ID: claims.UserID, Username: claims.Username}, nil
}
