package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

// MockTokenBlacklist implements ports.TokenBlacklist in memory.
type MockTokenBlacklist struct {
	mu      sync.RWMutex
	revoked map[string]time.Duration

	RevokeError    error
	IsRevokedError error
}

var _ ports.TokenBlacklist = (*MockTokenBlacklist)(nil)

func NewMockTokenBlacklist() *MockTokenBlacklist {
	return &MockTokenBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *MockTokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RevokeError != nil {
		return m.RevokeError
	}
	m.revoked[tokenID] = ttl
	return nil
}

func (m *MockTokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.IsRevokedError != nil {
		return false, m.IsRevokedError
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// TTL returns the ttl a token was revoked with and whether it was revoked.
func (m *MockTokenBlacklist) TTL(tokenID string) (time.Duration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ttl, ok := m.revoked[tokenID]
	return ttl, ok
}

// Count returns the number of revoked tokens.
func (m *MockTokenBlacklist) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.revoked)
}
