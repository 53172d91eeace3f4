package triage

import (
	"strings"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
)

const (
	MsgInvalidBirthDate = "Data de nascimento inválida."
	MsgEligible         = "Preliminarmente Apto para doação!"
	msgPrefix           = "Triagem concluída. "
	msgNoImpediment     = "Nenhum impedimento direto encontrado nas questões básicas."
	msgSeparator        = " | "
)

// accumulator folds findings with worst-wins semantics: the status only ever
// gets more restrictive and the deferral is the longest requested.
type accumulator struct {
	status   domain.TriageStatus
	messages []string
	deferral int
}

func (a *accumulator) apply(f facts, rules []rule) {
	for _, r := range rules {
		res, ok := r(f)
		if !ok {
			continue
		}
		a.status = a.status.Worst(res.floor)
		a.messages = append(a.messages, res.message)
		a.deferral = max(a.deferral, res.deferral)
	}
}

// Evaluate screens intake as of today. It never fails: malformed input turns
// into a permanent or advisory finding. An unparsable birth date stops the
// evaluation immediately.
func Evaluate(intake domain.Intake, today domain.Date) domain.Verdict {
	birth, err := domain.ParseDate(intake.BirthDate)
	if err != nil {
		return domain.Verdict{
			Status:  domain.StatusPermanentlyIneligible,
			Message: MsgInvalidBirthDate,
		}
	}

	f := facts{
		today:  today,
		age:    Age(birth, today),
		intake: intake,
	}
	if intake.LastDonationDate != "" {
		if last, err := domain.ParseDate(intake.LastDonationDate); err == nil {
			f.lastDonation = last
			f.hasLast = true
		} else {
			f.lastInvalid = true
		}
	}

	var acc accumulator
	acc.apply(f, gateRules)
	if acc.status != domain.StatusPermanentlyIneligible {
		acc.apply(f, healthRules)
	}
	acc.apply(f, intervalRules)

	return domain.Verdict{
		Status:           acc.status,
		Message:          acc.message(),
		DeferralDays:     acc.deferral,
		NextEligibleDate: acc.nextEligible(f),
	}
}

func (a *accumulator) message() string {
	if len(a.messages) == 0 {
		if a.status == domain.StatusEligible {
			return MsgEligible
		}
		return msgPrefix + msgNoImpediment
	}
	return msgPrefix + strings.Join(a.messages, msgSeparator)
}

func (a *accumulator) nextEligible(f facts) *domain.Date {
	switch a.status {
	case domain.StatusEligible:
		next := f.today.AddDays(MinIntervalDays)
		if f.hasLastDonation() {
			next = domain.Later(next, f.lastDonation.AddDays(MinIntervalDays))
		}
		return &next
	case domain.StatusTemporarilyIneligible:
		if a.deferral > 0 {
			next := f.today.AddDays(a.deferral)
			return &next
		}
	}
	return nil
}

// Age returns completed years between birth and today.
func Age(birth, today domain.Date) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}
