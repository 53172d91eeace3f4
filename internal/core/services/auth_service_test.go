package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
	"github.com/AchilleasB/sangria/donor-service/internal/testutil/mocks"
)

func newAuthFixture(t *testing.T) (*AuthService, *mocks.MockUserRepository, *mocks.MockTokenBlacklist, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	repo := mocks.NewMockUserRepository()
	blacklist := mocks.NewMockTokenBlacklist()
	return NewAuthService(repo, blacklist, key, nil), repo, blacklist, key
}

func registration() ports.RegisterUserInput {
	return ports.RegisterUserInput{
		FullName:        "João Souza",
		CPF:             "123.456.789-00",
		BirthDate:       "1990-04-12",
		Username:        "joao",
		Password:        "segredo1",
		ConfirmPassword: "segredo1",
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ports.RegisterUserInput)
		seed    *domain.User
		wantErr error
	}{
		{name: "success", mutate: func(*ports.RegisterUserInput) {}},
		{name: "missing_cpf", mutate: func(in *ports.RegisterUserInput) { in.CPF = "" }, wantErr: ErrMissingField},
		{name: "password_mismatch", mutate: func(in *ports.RegisterUserInput) { in.ConfirmPassword = "other123" }, wantErr: ErrPasswordMismatch},
		{name: "password_too_short", mutate: func(in *ports.RegisterUserInput) { in.Password, in.ConfirmPassword = "abc", "abc" }, wantErr: ErrPasswordTooShort},
		{name: "username_taken", mutate: func(*ports.RegisterUserInput) {}, seed: &domain.User{ID: "u0", Username: "joao", CPF: "999"}, wantErr: ErrUsernameTaken},
		{name: "cpf_taken", mutate: func(*ports.RegisterUserInput) {}, seed: &domain.User{ID: "u0", Username: "outro", CPF: "123.456.789-00"}, wantErr: ErrCPFTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _ := newAuthFixture(t)
			if tt.seed != nil {
				repo.SeedUser(*tt.seed)
			}
			in := registration()
			tt.mutate(&in)

			user, err := svc.Register(context.Background(), in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.CreateUserCalls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.RoleUser, user.Role)
			assert.NotEqual(t, in.Password, user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)))
			assert.Len(t, repo.CreateUserCalls, 1)
		})
	}
}

func TestAuthService_Register_RepositoryError(t *testing.T) {
	svc, repo, _, _ := newAuthFixture(t)
	repo.FindByUsernameError = errors.New("db down")

	_, err := svc.Register(context.Background(), registration())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_LoginIssuesRS256Token(t *testing.T) {
	svc, _, _, key := newAuthFixture(t)
	_, err := svc.Register(context.Background(), registration())
	require.NoError(t, err)

	tokenString, err := svc.Login(context.Background(), "joao", "segredo1")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "RS256", token.Method.Alg())
	assert.Equal(t, "USER", claims["role"])
	assert.NotEmpty(t, claims["jti"])
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), registration())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "joao", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "segredo1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LogoutRevokesUntilExpiry(t *testing.T) {
	svc, _, blacklist, _ := newAuthFixture(t)
	issued := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	_, err := svc.Register(context.Background(), registration())
	require.NoError(t, err)
	tokenString, err := svc.Login(context.Background(), "joao", "segredo1")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(time.Hour) }
	require.NoError(t, svc.Logout(context.Background(), tokenString))

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tokenString, claims)
	require.NoError(t, err)

	ttl, ok := blacklist.TTL(claims["jti"].(string))
	assert.True(t, ok)
	assert.Equal(t, 23*time.Hour, ttl)
}

func TestAuthService_LogoutRejectsGarbage(t *testing.T) {
	svc, _, blacklist, _ := newAuthFixture(t)

	err := svc.Logout(context.Background(), "not.a.token")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 0, blacklist.Count())
}
