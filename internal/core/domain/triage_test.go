package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriageStatus_Worst(t *testing.T) {
	assert.Equal(t, StatusTemporarilyIneligible, StatusEligible.Worst(StatusTemporarilyIneligible))
	assert.Equal(t, StatusPermanentlyIneligible, StatusPermanentlyIneligible.Worst(StatusEligible))
	assert.Equal(t, StatusPermanentlyIneligible, StatusTemporarilyIneligible.Worst(StatusPermanentlyIneligible))
	assert.Equal(t, StatusEligible, StatusEligible.Worst(StatusEligible))
}

func TestTriageStatus_TextRoundTrip(t *testing.T) {
	for _, s := range []TriageStatus{StatusEligible, StatusTemporarilyIneligible, StatusPermanentlyIneligible} {
		text, err := s.MarshalText()
		assert.NoError(t, err)

		var parsed TriageStatus
		assert.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, s, parsed)
	}

	var s TriageStatus
	assert.Error(t, s.UnmarshalText([]byte("apto_pos_espera")))
}

func TestDeriveDisplayStatus(t *testing.T) {
	today := NewDate(2024, 6, 10)
	past := today.AddDays(-1)
	future := today.AddDays(1)

	tests := []struct {
		name   string
		status TriageStatus
		next   *Date
		want   DisplayStatus
	}{
		{"temporary_wait_elapsed", StatusTemporarilyIneligible, &past, DisplayEligibleAfterWait},
		{"temporary_wait_ends_today", StatusTemporarilyIneligible, &today, DisplayEligibleAfterWait},
		{"temporary_still_waiting", StatusTemporarilyIneligible, &future, DisplayTemporarilyIneligible},
		{"temporary_without_date", StatusTemporarilyIneligible, nil, DisplayTemporarilyIneligible},
		{"eligible_inside_interval", StatusEligible, &future, DisplayAwaitingInterval},
		{"eligible_interval_over", StatusEligible, &past, DisplayEligible},
		{"eligible_on_next_date", StatusEligible, &today, DisplayEligible},
		{"permanent_ignores_date", StatusPermanentlyIneligible, &past, DisplayPermanentlyIneligible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDisplayStatus(tt.status, tt.next, today))
		})
	}
}

func TestDate_DaysSinceAndParse(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	assert.NoError(t, err)
	assert.Equal(t, 29, d.DaysSince(NewDate(2024, 2, 1)))
	assert.Equal(t, -29, NewDate(2024, 2, 1).DaysSince(d))
	assert.Equal(t, "2024-05-30", d.AddDays(90).String())

	today := NewDate(2024, 1, 1)
	assert.Equal(t, -2913173, today.DaysSince(NewDate(9999, 12, 31)))
	assert.Equal(t, 118338, today.DaysSince(NewDate(1700, 1, 1)))
	assert.Equal(t, 3652058, NewDate(9999, 12, 31).DaysSince(NewDate(1, 1, 1)))

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}
