package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
	"github.com/AchilleasB/sangria/donor-service/internal/core/triage"
	"github.com/AchilleasB/sangria/donor-service/internal/metrics"
)

type DonorService struct {
	donorRepo ports.DonorRepository
	exporter  ports.DonorExporter
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

var _ ports.DonorService = (*DonorService)(nil)

type DonorServiceOption func(*DonorService)

// WithClock overrides the wall clock used to pick "today".
func WithClock(now func() time.Time) DonorServiceOption {
	return func(s *DonorService) { s.now = now }
}

func NewDonorService(
	donorRepo ports.DonorRepository,
	exporter ports.DonorExporter,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...DonorServiceOption,
) *DonorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DonorService{
		donorRepo: donorRepo,
		exporter:  exporter,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DonorService) today() domain.Date {
	return domain.DateOf(s.now())
}

// Screen evaluates intake as of today without storing anything.
func (s *DonorService) Screen(intake domain.Intake) domain.Verdict {
	start := time.Now()
	verdict := triage.Evaluate(intake, s.today())
	s.metrics.ObserveVerdict(verdict.Status.String(), verdict.DeferralDays, time.Since(start))
	return verdict
}

// RegisterDonor screens the donor and stores donor, verdict and a
// donor.triaged outbox event together.
func (s *DonorService) RegisterDonor(ctx context.Context, in ports.DonorInput) (*domain.Donor, error) {
	required := []struct{ name, value string }{
		{"donorName", in.Name},
		{"birthDate", in.Intake.BirthDate},
		{"weight", in.Intake.Weight},
		{"bloodType", in.BloodType},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			s.metrics.IncrementRegistration("invalid")
			return nil, missingField(f.name)
		}
	}

	verdict := s.Screen(in.Intake)

	donor := domain.Donor{
		ID:               uuid.NewString(),
		Name:             in.Name,
		BirthDate:        in.Intake.BirthDate,
		BloodType:        in.BloodType,
		LastDonationDate: in.Intake.LastDonationDate,
		ContactInfo:      in.ContactInfo,
		Triage:           verdict,
		RegisteredBy:     in.RegisteredBy,
		RegisteredAt:     s.now().UTC(),
	}
	if w, ok := triage.ParseWeight(in.Intake.Weight); ok {
		donor.Weight = &w
	}

	event := ports.DonorTriagedEvent{
		DonorID:      donor.ID,
		Name:         donor.Name,
		BloodType:    donor.BloodType,
		Status:       verdict.Status.String(),
		DeferralDays: verdict.DeferralDays,
		RegisteredAt: donor.RegisteredAt,
	}
	if verdict.NextEligibleDate != nil {
		event.NextEligibleDate = verdict.NextEligibleDate.String()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.metrics.IncrementRegistration("error")
		return nil, fmt.Errorf("encode outbox event: %w", err)
	}

	if err := s.donorRepo.CreateDonor(ctx, donor, payload); err != nil {
		s.metrics.IncrementRegistration("error")
		return nil, fmt.Errorf("store donor: %w", err)
	}

	s.metrics.IncrementRegistration("stored")
	s.logger.Info("donor registered",
		zap.String("donor_id", donor.ID),
		zap.String("status", verdict.Status.String()),
		zap.Int("deferral_days", verdict.DeferralDays),
		zap.String("registered_by", in.RegisteredBy),
	)
	return &donor, nil
}

// ListDonors returns every donor, newest registration first, with the
// display status derived for today.
func (s *DonorService) ListDonors(ctx context.Context) ([]domain.DonorView, error) {
	return s.views(ctx, ports.NewestFirst)
}

// ExportSpreadsheet writes all donors, ordered by name, through the exporter.
func (s *DonorService) ExportSpreadsheet(ctx context.Context, w io.Writer) error {
	views, err := s.views(ctx, ports.ByName)
	if err != nil {
		return err
	}
	if err := s.exporter.ExportDonors(w, views, s.today()); err != nil {
		return fmt.Errorf("export donors: %w", err)
	}
	return nil
}

func (s *DonorService) views(ctx context.Context, order ports.DonorOrder) ([]domain.DonorView, error) {
	donors, err := s.donorRepo.ListDonors(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	today := s.today()
	views := make([]domain.DonorView, 0, len(donors))
	for _, d := range donors {
		views = append(views, d.View(today))
	}
	return views, nil
}
