package services

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

const (
	MinPasswordLength = 6
	tokenLifetime     = 24 * time.Hour
)

type AuthService struct {
	userRepo   ports.UserRepository
	blacklist  ports.TokenBlacklist
	privateKey *rsa.PrivateKey
	logger     *zap.Logger
	now        func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	userRepo ports.UserRepository,
	blacklist ports.TokenBlacklist,
	privateKey *rsa.PrivateKey,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		privateKey: privateKey,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a regular (non-admin) account.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterUserInput) (*domain.User, error) {
	required := []struct{ name, value string }{
		{"full_name", in.FullName},
		{"cpf", in.CPF},
		{"birth_date_user", in.BirthDate},
		{"username", in.Username},
		{"password", in.Password},
		{"confirm_password", in.ConfirmPassword},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, missingField(f.name)
		}
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	taken, err := s.userRepo.ExistsByCPF(ctx, in.CPF)
	if err != nil {
		return nil, fmt.Errorf("lookup cpf: %w", err)
	}
	if taken {
		return nil, ErrCPFTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		FullName:     in.FullName,
		CPF:          in.CPF,
		BirthDate:    in.BirthDate,
		Role:         domain.RoleUser,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return &user, nil
}

// Login verifies the password and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, ports.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.FullName,
		"role": string(user.Role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return &s.privateKey.PublicKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if jti == "" || err != nil || exp == nil {
		return ErrInvalidToken
	}

	ttl := exp.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, jti, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
