package ports

import (
	"context"
	"errors"
	"time"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
)

// ErrNotFound is returned by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	CreateUser(ctx context.Context, user domain.User) error
}

type DonorOrder int

const (
	NewestFirst DonorOrder = iota
	ByName
)

type DonorRepository interface {
	// CreateDonor stores the donor and an outbox event in one transaction.
	CreateDonor(ctx context.Context, donor domain.Donor, outboxPayload []byte) error
	ListDonors(ctx context.Context, order DonorOrder) ([]domain.Donor, error)
}

// TokenBlacklist records revoked access tokens until they would have expired.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
