package domain

import "time"

// Donor is a registered donor together with the verdict computed at registration.
type Donor struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	BirthDate        string    `json:"birth_date"`
	Weight           *float64  `json:"weight"`
	BloodType        string    `json:"blood_type"`
	LastDonationDate string    `json:"last_donation_date,omitempty"`
	ContactInfo      string    `json:"contact_info,omitempty"`
	Triage           Verdict   `json:"triage"`
	RegisteredBy     string    `json:"registered_by,omitempty"`
	RegisteredAt     time.Time `json:"registration_date"`
}

// DonorView is the read model returned to clients. DisplayStatus is derived
// on every read and never stored.
type DonorView struct {
	Donor
	DisplayStatus DisplayStatus `json:"display_status"`
}

// View derives the display status of d for the given day.
func (d Donor) View(today Date) DonorView {
	return DonorView{
		Donor:         d,
		DisplayStatus: DeriveDisplayStatus(d.Triage.Status, d.Triage.NextEligibleDate, today),
	}
}
