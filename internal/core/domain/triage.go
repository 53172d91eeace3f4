package domain

import "fmt"

// TriageStatus is the persisted eligibility outcome. Values are ordered from
// best to worst so that combining two statuses is a max.
type TriageStatus int

const (
	StatusEligible TriageStatus = iota
	StatusTemporarilyIneligible
	StatusPermanentlyIneligible
)

func (s TriageStatus) String() string {
	switch s {
	case StatusEligible:
		return "apto"
	case StatusTemporarilyIneligible:
		return "inapto_temporario"
	case StatusPermanentlyIneligible:
		return "inapto_permanente"
	default:
		return fmt.Sprintf("TriageStatus(%d)", int(s))
	}
}

// ParseTriageStatus maps a stored wire value back to a status.
func ParseTriageStatus(v string) (TriageStatus, error) {
	switch v {
	case "apto":
		return StatusEligible, nil
	case "inapto_temporario":
		return StatusTemporarilyIneligible, nil
	case "inapto_permanente":
		return StatusPermanentlyIneligible, nil
	}
	return StatusEligible, fmt.Errorf("unknown triage status %q", v)
}

func (s TriageStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TriageStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseTriageStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Worst returns the more restrictive of s and o. Permanent always wins.
func (s TriageStatus) Worst(o TriageStatus) TriageStatus {
	if o > s {
		return o
	}
	return s
}

// Verdict is the output of one triage evaluation. DeferralDays is meaningful
// only for StatusTemporarilyIneligible; NextEligibleDate is nil when no date
// applies.
type Verdict struct {
	Status           TriageStatus `json:"status"`
	Message          string       `json:"message"`
	DeferralDays     int          `json:"deferral_days"`
	NextEligibleDate *Date        `json:"next_eligible_date,omitempty"`
}

// Intake holds the donor answers the evaluator reads. Dates and weight stay
// raw so that malformed input degrades into a verdict instead of an error.
type Intake struct {
	BirthDate             string
	Weight                string
	LastDonationDate      string
	FeverFlu              bool
	TattooPiercing        bool
	Hepatitis             bool
	STDPositive           bool
	InjectedDrugs         bool
	PregnantBreastfeeding bool
}

// DisplayStatus is derived at read time from a stored verdict and the current
// day. It is never persisted.
type DisplayStatus string

const (
	DisplayEligible              DisplayStatus = "apto"
	DisplayTemporarilyIneligible DisplayStatus = "inapto_temporario"
	DisplayPermanentlyIneligible DisplayStatus = "inapto_permanente"
	DisplayEligibleAfterWait     DisplayStatus = "apto_pos_espera"
	DisplayAwaitingInterval      DisplayStatus = "aguardando_intervalo"
)

// DeriveDisplayStatus reports a temporary deferral whose date has arrived as
// eligible-after-wait, and an eligible donor still inside the minimum
// interval as awaiting-interval. Every other combination shows the stored status.
func DeriveDisplayStatus(status TriageStatus, next *Date, today Date) DisplayStatus {
	display := DisplayStatus(status.String())
	if next == nil || next.IsZero() {
		return display
	}
	switch {
	case status == StatusTemporarilyIneligible && !next.After(today):
		return DisplayEligibleAfterWait
	case status == StatusEligible && next.After(today):
		return DisplayAwaitingInterval
	}
	return display
}
