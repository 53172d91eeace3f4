package triage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
)

const (
	MinAge              = 16
	MaxAge              = 69
	MaxFirstDonationAge = 60
	MinWeightKg         = 50.0
	MinIntervalDays     = 90
)

// finding is one triggered rule: the status it forces at minimum, the message
// it contributes, and the deferral it asks for.
type finding struct {
	floor    domain.TriageStatus
	message  string
	deferral int
}

// facts are the parsed inputs shared by every rule.
type facts struct {
	today        domain.Date
	age          int
	intake       domain.Intake
	lastDonation domain.Date
	hasLast      bool
	lastInvalid  bool
}

func (f facts) hasLastDonation() bool {
	return f.hasLast
}

type rule func(f facts) (finding, bool)

func permanent(msg string) finding {
	return finding{floor: domain.StatusPermanentlyIneligible, message: msg}
}

func temporary(msg string, days int) finding {
	return finding{floor: domain.StatusTemporarilyIneligible, message: msg, deferral: days}
}

func ageRule(f facts) (finding, bool) {
	if f.age < MinAge || f.age > MaxAge {
		return permanent(fmt.Sprintf("Idade (%d anos) fora do permitido (%d-%d anos).", f.age, MinAge, MaxAge)), true
	}
	// An unparsable last donation date counts as no prior donation here.
	if f.age > MaxFirstDonationAge && !f.hasLastDonation() {
		return permanent(fmt.Sprintf("Primeira doação não permitida acima de %d anos.", MaxFirstDonationAge)), true
	}
	return finding{}, false
}

func weightRule(f facts) (finding, bool) {
	weight, ok := ParseWeight(f.intake.Weight)
	if !ok {
		return permanent("Valor de peso inválido."), true
	}
	if weight < MinWeightKg {
		return permanent(fmt.Sprintf("Peso inferior a %gkg.", MinWeightKg)), true
	}
	return finding{}, false
}

// flagRule triggers when its questionnaire answer is yes.
func flagRule(answer func(domain.Intake) bool, result finding) rule {
	return func(f facts) (finding, bool) {
		return result, answer(f.intake)
	}
}

func intervalRule(f facts) (finding, bool) {
	if f.lastInvalid {
		return finding{floor: domain.StatusEligible, message: "Data da última doação inválida."}, true
	}
	if !f.hasLastDonation() {
		return finding{}, false
	}
	elapsed := f.today.DaysSince(f.lastDonation)
	if elapsed >= MinIntervalDays {
		return finding{}, false
	}
	remaining := MinIntervalDays - elapsed
	return temporary(
		fmt.Sprintf("Ainda faltam %d dias desde a última doação (intervalo mínimo %d dias).", remaining, MinIntervalDays),
		remaining,
	), true
}

var (
	gateRules = []rule{ageRule, weightRule}

	// healthRules run only while no gate has failed permanently.
	healthRules = []rule{
		flagRule(func(i domain.Intake) bool { return i.FeverFlu },
			temporary("Febre/gripe nos últimos 7 dias. Aguardar 7 dias após o fim dos sintomas.", 7)),
		flagRule(func(i domain.Intake) bool { return i.TattooPiercing },
			temporary("Tatuagem/piercing nos últimos 6 meses. Aguardar 6 meses.", 180)),
		flagRule(func(i domain.Intake) bool { return i.Hepatitis },
			permanent("Hepatite após os 11 anos é um impedimento definitivo.")),
		flagRule(func(i domain.Intake) bool { return i.STDPositive },
			permanent("Teste positivo para HIV, HTLV, Sífilis ou Hepatite B/C é impedimento definitivo.")),
		flagRule(func(i domain.Intake) bool { return i.InjectedDrugs },
			permanent("Uso de drogas injetáveis é impedimento definitivo.")),
		flagRule(func(i domain.Intake) bool { return i.PregnantBreastfeeding },
			temporary("Gestantes ou lactantes (bebê < 12 meses) não podem doar.", 365)),
	}

	intervalRules = []rule{intervalRule}
)

// ParseWeight reads a decimal weight in kilograms, accepting either comma or
// dot as the decimal separator. NaN and Inf parse as floats but are rejected
// as weights.
func ParseWeight(raw string) (float64, bool) {
	normalized := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if normalized == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, false
	}
	return w, true
}
