package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

// testDB is set only when TEST_DB_CONNECTION_STRING points at a reachable database.
var testDB *sql.DB

func TestMain(m *testing.M) {
	dbURL := os.Getenv("TEST_DB_CONNECTION_STRING")
	if dbURL == "" {
		os.Exit(m.Run())
	}

	var err error
	testDB, err = sql.Open("postgres", dbURL)
	if err != nil {
		fmt.Printf("Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}
	if err := testDB.Ping(); err != nil {
		fmt.Printf("Failed to ping test database: %v\n", err)
		os.Exit(1)
	}
	if err := NewSQLRepository(testDB).EnsureSchema(context.Background()); err != nil {
		fmt.Printf("Failed to setup test schema: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	cleanupTestData(testDB)
	testDB.Close()
	os.Exit(code)
}

func cleanupTestData(db *sql.DB) {
	db.Exec("DELETE FROM outbox_events")
	db.Exec("DELETE FROM donors")
	db.Exec("DELETE FROM users")
}

func requireDB(t *testing.T) *SQLRepository {
	t.Helper()
	if testDB == nil {
		t.Skip("Integration tests require TEST_DB_CONNECTION_STRING")
	}
	cleanupTestData(testDB)
	return NewSQLRepository(testDB)
}

func TestIntegration_UserRoundTrip(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	user := domain.User{
		ID:           "7d3c6a2e-1f0b-4c55-9a57-0d3f1c2b9e10",
		Username:     "maria",
		FullName:     "Maria Souza",
		CPF:          "123.456.789-00",
		BirthDate:    "1990-04-12",
		Role:         domain.RoleUser,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.FindByUsername(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, domain.RoleUser, got.Role)

	exists, err := repo.ExistsByCPF(ctx, user.CPF)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	dup := user
	dup.ID = "1e0f6a0c-8f5d-4a9e-b0f2-5b7d6c3e2a11"
	assert.Error(t, repo.CreateUser(ctx, dup), "username is unique")
}

func TestIntegration_CreateDonorWritesOutboxEvent(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	next := domain.NewDate(2024, time.March, 31)
	weight := 70.5
	donor := domain.Donor{
		ID:        "b1c2d3e4-0000-4000-8000-000000000001",
		Name:      "Ana Lima",
		BirthDate: "1990-05-10",
		Weight:    &weight,
		BloodType: "O+",
		Triage: domain.Verdict{
			Status:           domain.StatusEligible,
			Message:          "Preliminarmente Apto para doação!",
			NextEligibleDate: &next,
		},
		RegisteredAt: time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(ports.DonorTriagedEvent{DonorID: donor.ID, Status: "apto"})
	require.NoError(t, err)

	require.NoError(t, repo.CreateDonor(ctx, donor, payload))

	var eventType string
	err = testDB.QueryRow("SELECT event_type FROM outbox_events WHERE processed_at IS NULL").Scan(&eventType)
	require.NoError(t, err)
	assert.Equal(t, ports.EventDonorTriaged, eventType)

	donors, err := repo.ListDonors(ctx, ports.NewestFirst)
	require.NoError(t, err)
	require.Len(t, donors, 1)
	got := donors[0]
	assert.Equal(t, donor.Name, got.Name)
	require.NotNil(t, got.Weight)
	assert.InDelta(t, weight, *got.Weight, 1e-9)
	assert.Empty(t, got.LastDonationDate)
	require.NotNil(t, got.Triage.NextEligibleDate)
	assert.Equal(t, "2024-03-31", got.Triage.NextEligibleDate.String())
}

func TestIntegration_CreateDonorRollsBackOnOutboxFailure(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	donor := domain.Donor{
		ID:           "b1c2d3e4-0000-4000-8000-000000000002",
		Name:         "Bruno",
		BirthDate:    "not-a-date",
		BloodType:    "A-",
		Triage:       domain.Verdict{Status: domain.StatusPermanentlyIneligible, Message: "Data de nascimento inválida."},
		RegisteredAt: time.Now().UTC(),
	}

	err := repo.CreateDonor(ctx, donor, []byte("{not json"))
	require.Error(t, err)

	donors, err := repo.ListDonors(ctx, ports.ByName)
	require.NoError(t, err)
	assert.Empty(t, donors)
}

func TestIntegration_ListDonorsOrdering(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"Carla", "Ana", "Bruno"} {
		d := domain.Donor{
			ID:           fmt.Sprintf("c0000000-0000-4000-8000-00000000000%d", i),
			Name:         name,
			BirthDate:    "1990-01-01",
			BloodType:    "O+",
			Triage:       domain.Verdict{Status: domain.StatusEligible, Message: "ok"},
			RegisteredAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.CreateDonor(ctx, d, []byte(`{}`)))
	}

	byName, err := repo.ListDonors(ctx, ports.ByName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Bruno", "Carla"}, names(byName))

	newest, err := repo.ListDonors(ctx, ports.NewestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bruno", "Ana", "Carla"}, names(newest))
}

func names(donors []domain.Donor) []string {
	out := make([]string, len(donors))
	for i, d := range donors {
		out[i] = d.Name
	}
	return out
}
