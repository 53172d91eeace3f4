package middleware

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	blacklist ports.TokenBlacklist
	logger    *zap.Logger
}

func NewAuthMiddleware(publicKey *rsa.PublicKey, blacklist ports.TokenBlacklist, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		publicKey: publicKey,
		blacklist: blacklist,
		logger:    logger.Named("auth"),
	}
}

type contextKey string

const (
	UserIDKey contextKey = "userID"
	RoleKey   contextKey = "role"
	NameKey   contextKey = "name"
	TokenKey  contextKey = "token"
)

// UserID returns the authenticated user ID stored by Authenticate.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

func Role(ctx context.Context) string {
	v, _ := ctx.Value(RoleKey).(string)
	return v
}

// Name returns the display name carried in the token, falling back to the user ID.
func Name(ctx context.Context) string {
	if v, _ := ctx.Value(NameKey).(string); v != "" {
		return v
	}
	return UserID(ctx)
}

// Token returns the raw bearer token of the current request.
func Token(ctx context.Context) string {
	v, _ := ctx.Value(TokenKey).(string)
	return v
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Authenticate validates the bearer token and rejects revoked ones.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		tokenString := parts[1]

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.publicKey, nil
		})
		if err != nil || !token.Valid {
			m.logger.Debug("token rejected", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		userID, _ := claims["sub"].(string)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "invalid token: missing user ID")
			return
		}
		userRole, _ := claims["role"].(string)
		if userRole == "" {
			writeError(w, http.StatusUnauthorized, "invalid token: missing role")
			return
		}

		if jti, _ := claims["jti"].(string); jti != "" && m.blacklist != nil {
			revoked, err := m.blacklist.IsRevoked(r.Context(), jti)
			if err != nil {
				m.logger.Error("blacklist lookup failed", zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "authentication temporarily unavailable")
				return
			}
			if revoked {
				writeError(w, http.StatusUnauthorized, "token revoked")
				return
			}
		}

		name, _ := claims["name"].(string)

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, RoleKey, userRole)
		ctx = context.WithValue(ctx, NameKey, name)
		ctx = context.WithValue(ctx, TokenKey, tokenString)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, Role(r.Context())) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
