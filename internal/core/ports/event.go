package ports

import (
	"context"
	"time"
)

// EventDonorTriaged is the outbox event type and routing key for new verdicts.
const EventDonorTriaged = "donor.triaged"

type DonorTriagedEvent struct {
	DonorID          string    `json:"donor_id"`
	Name             string    `json:"name"`
	BloodType        string    `json:"blood_type"`
	Status           string    `json:"status"`
	DeferralDays     int       `json:"deferral_days"`
	NextEligibleDate string    `json:"next_eligible_date,omitempty"`
	RegisteredAt     time.Time `json:"registered_at"`
}

type DonorEventPublisher interface {
	PublishDonorTriaged(ctx context.Context, evt DonorTriagedEvent) error
}
