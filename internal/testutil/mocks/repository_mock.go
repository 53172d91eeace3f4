// Package mocks provides in-memory implementations of port interfaces for
// tests. Each mock records its calls and supports error injection.
package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

// MockUserRepository implements ports.UserRepository for testing.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	FindByUsernameCalls []string
	CreateUserCalls     []domain.User

	FindByUsernameError error
	ExistsByCPFError    error
	CreateUserError     error
}

var _ ports.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// SeedUser adds a user to the mock repository for test setup.
func (m *MockUserRepository) SeedUser(user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Username] = &user
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindByUsernameCalls = append(m.FindByUsernameCalls, username)

	if m.FindByUsernameError != nil {
		return nil, m.FindByUsernameError
	}
	user, ok := m.users[username]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ExistsByCPFError != nil {
		return false, m.ExistsByCPFError
	}
	for _, u := range m.users {
		if u.CPF == cpf {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateUserCalls = append(m.CreateUserCalls, user)

	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	m.users[user.Username] = &user
	return nil
}

// MockDonorRepository implements ports.DonorRepository for testing.
type MockDonorRepository struct {
	mu     sync.RWMutex
	donors []domain.Donor

	CreateDonorCalls []domain.Donor
	OutboxPayloads   [][]byte
	ListDonorsCalls  []ports.DonorOrder

	CreateDonorError error
	ListDonorsError  error
}

var _ ports.DonorRepository = (*MockDonorRepository)(nil)

func NewMockDonorRepository() *MockDonorRepository {
	return &MockDonorRepository{}
}

// SeedDonor adds a stored donor for test setup.
func (m *MockDonorRepository) SeedDonor(donor domain.Donor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.donors = append(m.donors, donor)
}

func (m *MockDonorRepository) CreateDonor(ctx context.Context, donor domain.Donor, outboxPayload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateDonorCalls = append(m.CreateDonorCalls, donor)
	m.OutboxPayloads = append(m.OutboxPayloads, outboxPayload)

	if m.CreateDonorError != nil {
		return m.CreateDonorError
	}
	m.donors = append(m.donors, donor)
	return nil
}

func (m *MockDonorRepository) ListDonors(ctx context.Context, order ports.DonorOrder) ([]domain.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListDonorsCalls = append(m.ListDonorsCalls, order)

	if m.ListDonorsError != nil {
		return nil, m.ListDonorsError
	}
	out := make([]domain.Donor, len(m.donors))
	copy(out, m.donors)
	switch order {
	case ports.ByName:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	}
	return out, nil
}
