package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

const donorColumns = `id, name, birth_date, weight, blood_type, last_donation_date, contact_info,
	triage_result_status, triage_deferral_days, triage_message, calculated_next_donation_date,
	registered_by, registration_date`

// CreateDonor inserts the donor and its outbox event in one transaction. The
// outbox insert fires the NOTIFY trigger the relay listens on.
func (r *SQLRepository) CreateDonor(ctx context.Context, donor domain.Donor, outboxPayload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next sql.NullString
	if donor.Triage.NextEligibleDate != nil {
		next = nullString(donor.Triage.NextEligibleDate.String())
	}
	var weight sql.NullFloat64
	if donor.Weight != nil {
		weight = sql.NullFloat64{Float64: *donor.Weight, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO donors (`+donorColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::date, $12, $13)`,
		donor.ID,
		donor.Name,
		donor.BirthDate,
		weight,
		donor.BloodType,
		nullString(donor.LastDonationDate),
		nullString(donor.ContactInfo),
		donor.Triage.Status.String(),
		donor.Triage.DeferralDays,
		donor.Triage.Message,
		next,
		nullString(donor.RegisteredBy),
		donor.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("insert donor: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO outbox_events (id, event_type, payload) VALUES ($1, $2, $3)",
		uuid.NewString(),
		ports.EventDonorTriaged,
		outboxPayload,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return tx.Commit()
}

func (r *SQLRepository) ListDonors(ctx context.Context, order ports.DonorOrder) ([]domain.Donor, error) {
	orderBy := "registration_date DESC"
	if order == ports.ByName {
		orderBy = "name ASC"
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+donorColumns+" FROM donors ORDER BY "+orderBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donors []domain.Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, err
		}
		donors = append(donors, d)
	}
	return donors, rows.Err()
}

func scanDonor(rows *sql.Rows) (domain.Donor, error) {
	var (
		d                         domain.Donor
		weight                    sql.NullFloat64
		lastDonation, contactInfo sql.NullString
		registeredBy              sql.NullString
		status                    string
		next                      sql.NullTime
	)
	err := rows.Scan(&d.ID, &d.Name, &d.BirthDate, &weight, &d.BloodType, &lastDonation, &contactInfo,
		&status, &d.Triage.DeferralDays, &d.Triage.Message, &next, &registeredBy, &d.RegisteredAt)
	if err != nil {
		return d, err
	}

	d.Triage.Status, err = domain.ParseTriageStatus(status)
	if err != nil {
		return d, fmt.Errorf("donor %s: %w", d.ID, err)
	}
	if weight.Valid {
		w := weight.Float64
		d.Weight = &w
	}
	if next.Valid {
		n := domain.DateOf(next.Time)
		d.Triage.NextEligibleDate = &n
	}
	d.LastDonationDate = lastDonation.String
	d.ContactInfo = contactInfo.String
	d.RegisteredBy = registeredBy.String
	return d, nil
}
