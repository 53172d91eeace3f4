package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
	"github.com/AchilleasB/sangria/donor-service/internal/metrics"
	"github.com/AchilleasB/sangria/donor-service/internal/testutil/mocks"
)

type DonorServiceSuite struct {
	suite.Suite
	repo     *mocks.MockDonorRepository
	exporter *mocks.MockDonorExporter
	metrics  *metrics.Metrics
	service  *DonorService
	now      time.Time
}

func (s *DonorServiceSuite) SetupTest() {
	s.repo = mocks.NewMockDonorRepository()
	s.exporter = mocks.NewMockDonorExporter()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)
	s.service = NewDonorService(s.repo, s.exporter, s.metrics, nil, WithClock(func() time.Time { return s.now }))
}

func TestDonorServiceSuite(t *testing.T) {
	suite.Run(t, new(DonorServiceSuite))
}

func validInput() ports.DonorInput {
	return ports.DonorInput{
		Name:         "Maria Silva",
		BloodType:    "O+",
		ContactInfo:  "maria@example.com",
		RegisteredBy: "user-1",
		Intake: domain.Intake{
			BirthDate: "2000-01-01",
			Weight:    "70,5",
		},
	}
}

func (s *DonorServiceSuite) TestRegisterDonor_StoresVerdictAndOutboxEvent() {
	donor, err := s.service.RegisterDonor(context.Background(), validInput())
	s.Require().NoError(err)

	s.Equal(domain.StatusEligible, donor.Triage.Status)
	s.Equal("Preliminarmente Apto para doação!", donor.Triage.Message)
	s.Require().NotNil(donor.Triage.NextEligibleDate)
	s.Equal("2024-03-31", donor.Triage.NextEligibleDate.String())
	s.Require().NotNil(donor.Weight)
	s.Equal(70.5, *donor.Weight)
	s.NotEmpty(donor.ID)
	s.Equal(s.now, donor.RegisteredAt)

	s.Require().Len(s.repo.CreateDonorCalls, 1)
	s.Equal(*donor, s.repo.CreateDonorCalls[0])

	var evt ports.DonorTriagedEvent
	s.Require().NoError(json.Unmarshal(s.repo.OutboxPayloads[0], &evt))
	s.Equal(donor.ID, evt.DonorID)
	s.Equal("apto", evt.Status)
	s.Equal("2024-03-31", evt.NextEligibleDate)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues("stored")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.TriageOutcome.WithLabelValues("apto")))
}

func (s *DonorServiceSuite) TestRegisterDonor_MissingRequiredFields() {
	tests := []struct {
		name   string
		mutate func(*ports.DonorInput)
		field  string
	}{
		{"no_name", func(in *ports.DonorInput) { in.Name = "" }, "donorName"},
		{"blank_birth_date", func(in *ports.DonorInput) { in.Intake.BirthDate = "  " }, "birthDate"},
		{"no_weight", func(in *ports.DonorInput) { in.Intake.Weight = "" }, "weight"},
		{"no_blood_type", func(in *ports.DonorInput) { in.BloodType = "" }, "bloodType"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := validInput()
			tt.mutate(&in)

			_, err := s.service.RegisterDonor(context.Background(), in)

			s.ErrorIs(err, ErrMissingField)
			s.Contains(err.Error(), tt.field)
		})
	}
	s.Empty(s.repo.CreateDonorCalls, "nothing is stored for incomplete input")
}

func (s *DonorServiceSuite) TestRegisterDonor_MalformedContentStillStored() {
	in := validInput()
	in.Intake.Weight = "heavy"

	donor, err := s.service.RegisterDonor(context.Background(), in)
	s.Require().NoError(err)

	s.Equal(domain.StatusPermanentlyIneligible, donor.Triage.Status)
	s.Nil(donor.Weight)
	s.Len(s.repo.CreateDonorCalls, 1)
}

func (s *DonorServiceSuite) TestRegisterDonor_RepositoryFailure() {
	s.repo.CreateDonorError = errors.New("connection refused")

	_, err := s.service.RegisterDonor(context.Background(), validInput())

	s.Error(err)
	s.Contains(err.Error(), "store donor")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues("error")))
}

func (s *DonorServiceSuite) TestListDonors_DerivesDisplayStatus() {
	past := domain.NewDate(2023, 12, 20)
	future := domain.NewDate(2024, 2, 1)

	s.repo.SeedDonor(domain.Donor{
		ID: "waited", Name: "A", RegisteredAt: s.now.Add(-48 * time.Hour),
		Triage: domain.Verdict{Status: domain.StatusTemporarilyIneligible, DeferralDays: 7, NextEligibleDate: &past},
	})
	s.repo.SeedDonor(domain.Donor{
		ID: "interval", Name: "B", RegisteredAt: s.now.Add(-time.Hour),
		Triage: domain.Verdict{Status: domain.StatusEligible, NextEligibleDate: &future},
	})
	s.repo.SeedDonor(domain.Donor{
		ID: "permanent", Name: "C", RegisteredAt: s.now.Add(-72 * time.Hour),
		Triage: domain.Verdict{Status: domain.StatusPermanentlyIneligible},
	})

	views, err := s.service.ListDonors(context.Background())
	s.Require().NoError(err)
	s.Require().Len(views, 3)

	s.Equal("interval", views[0].ID)
	s.Equal(domain.DisplayAwaitingInterval, views[0].DisplayStatus)
	s.Equal("waited", views[1].ID)
	s.Equal(domain.DisplayEligibleAfterWait, views[1].DisplayStatus)
	s.Equal(domain.DisplayPermanentlyIneligible, views[2].DisplayStatus)
	s.Equal(domain.StatusTemporarilyIneligible, views[1].Triage.Status, "stored status is untouched")
	s.Equal([]ports.DonorOrder{ports.NewestFirst}, s.repo.ListDonorsCalls)
}

func (s *DonorServiceSuite) TestExportSpreadsheet_OrdersByName() {
	s.repo.SeedDonor(domain.Donor{ID: "2", Name: "Zé"})
	s.repo.SeedDonor(domain.Donor{ID: "1", Name: "Ana"})

	var buf bytes.Buffer
	s.Require().NoError(s.service.ExportSpreadsheet(context.Background(), &buf))

	s.Equal("export", buf.String())
	s.Require().Len(s.exporter.Exported, 1)
	s.Equal("Ana", s.exporter.Exported[0][0].Name)
	s.Equal(domain.NewDate(2024, 1, 1), s.exporter.GeneratedOn[0])
	s.Equal([]ports.DonorOrder{ports.ByName}, s.repo.ListDonorsCalls)
}

func (s *DonorServiceSuite) TestExportSpreadsheet_ListFailure() {
	s.repo.ListDonorsError = errors.New("timeout")

	err := s.service.ExportSpreadsheet(context.Background(), &bytes.Buffer{})

	s.Error(err)
	s.Empty(s.exporter.Exported)
}

func TestDonorService_ScreenUsesInjectedClock(t *testing.T) {
	now := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	svc := NewDonorService(mocks.NewMockDonorRepository(), nil, nil, nil, WithClock(func() time.Time { return now }))

	v := svc.Screen(domain.Intake{BirthDate: "2000-01-01", Weight: "70", LastDonationDate: "2023-12-02"})

	assert.Equal(t, domain.StatusTemporarilyIneligible, v.Status)
	assert.Equal(t, 60, v.DeferralDays)
	require.NotNil(t, v.NextEligibleDate)
	assert.Equal(t, "2024-03-01", v.NextEligibleDate.String())
}
