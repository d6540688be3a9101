package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AmenityService/internal/domain"
)

// testArea объект с типовыми правилами: работает 08:00-22:00, броня 30м-4ч,
// заявка минимум за 2 часа и не дальше 30 дней, воскресенье закрыто, квота 4
func testArea() *domain.CommonArea {
	return &domain.CommonArea{
		ID:                  1,
		CondoID:             100,
		Name:                "Gym",
		Capacity:            1,
		OpensAt:             "08:00",
		ClosesAt:            "22:00",
		MinDurationMinutes:  30,
		MaxDurationMinutes:  240,
		MinNoticeMinutes:    120,
		MaxAdvanceDays:      30,
		BlackoutWeekdays:    []time.Weekday{time.Sunday},
		MonthlyQuotaPerUnit: 4,
		Active:              true,
	}
}

func TestValidateReservationRules(t *testing.T) {
	// Четверг, 10 сентября 2026
	now := time.Date(2026, time.September, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		mutate   func(a *domain.CommonArea)
		startsAt time.Time
		endsAt   time.Time
		quota    int
		rule     domain.Rule
	}{
		{
			name:     "valid booking passes all rules",
			startsAt: now.Add(3 * time.Hour),
			endsAt:   now.Add(4 * time.Hour),
		},
		{
			name:     "inactive area",
			mutate:   func(a *domain.CommonArea) { a.Active = false },
			startsAt: now.Add(3 * time.Hour),
			endsAt:   now.Add(4 * time.Hour),
			rule:     domain.RuleAreaInactive,
		},
		{
			name:     "duration below minimum",
			startsAt: now.Add(3 * time.Hour),
			endsAt:   now.Add(3*time.Hour + 15*time.Minute),
			rule:     domain.RuleDuration,
		},
		{
			name:     "duration above maximum",
			startsAt: now.Add(3 * time.Hour),
			endsAt:   now.Add(8 * time.Hour),
			rule:     domain.RuleDuration,
		},
		{
			name:     "duration exactly at minimum",
			startsAt: now.Add(3 * time.Hour),
			endsAt:   now.Add(3*time.Hour + 30*time.Minute),
		},
		{
			name:     "starts before opening",
			startsAt: time.Date(2026, time.September, 11, 7, 0, 0, 0, time.UTC),
			endsAt:   time.Date(2026, time.September, 11, 9, 0, 0, 0, time.UTC),
			rule:     domain.RuleOpeningHours,
		},
		{
			name:     "ends after closing",
			startsAt: time.Date(2026, time.September, 11, 21, 0, 0, 0, time.UTC),
			endsAt:   time.Date(2026, time.September, 11, 23, 0, 0, 0, time.UTC),
			rule:     domain.RuleOpeningHours,
		},
		{
			name:     "ends exactly at closing",
			startsAt: time.Date(2026, time.September, 11, 20, 0, 0, 0, time.UTC),
			endsAt:   time.Date(2026, time.September, 11, 22, 0, 0, 0, time.UTC),
		},
		{
			name:     "midnight closing allows booking until end of day",
			mutate:   func(a *domain.CommonArea) { a.ClosesAt = "24:00" },
			startsAt: time.Date(2026, time.September, 11, 22, 0, 0, 0, time.UTC),
			endsAt:   time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "not enough notice",
			startsAt: now.Add(time.Hour),
			endsAt:   now.Add(2 * time.Hour),
			rule:     domain.RuleAdvanceNotice,
		},
		{
			name:     "beyond advance horizon",
			startsAt: now.AddDate(0, 0, 35).Add(time.Hour),
			endsAt:   now.AddDate(0, 0, 35).Add(2 * time.Hour),
			rule:     domain.RuleMaxAdvance,
		},
		{
			name:     "blackout weekday",
			startsAt: time.Date(2026, time.September, 13, 10, 0, 0, 0, time.UTC), // воскресенье
			endsAt:   time.Date(2026, time.September, 13, 11, 0, 0, 0, time.UTC),
			rule:     domain.RuleBlackout,
		},
		{
			name:     "quota exhausted",
			startsAt: now.Add(3 * time.Hour),
			endsAt:   now.Add(4 * time.Hour),
			quota:    4,
			rule:     domain.RuleQuota,
		},
		{
			name:     "quota below limit",
			startsAt: now.Add(3 * time.Hour),
			endsAt:   now.Add(4 * time.Hour),
			quota:    3,
		},
		{
			name:     "no quota limit",
			mutate:   func(a *domain.CommonArea) { a.MonthlyQuotaPerUnit = 0 },
			startsAt: now.Add(3 * time.Hour),
			endsAt:   now.Add(4 * time.Hour),
			quota:    100,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			area := testArea()
			if tc.mutate != nil {
				tc.mutate(area)
			}

			err := domain.ValidateReservationRules(area, tc.startsAt, tc.endsAt, now, tc.quota)
			if tc.rule == "" {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, domain.ErrRuleViolation)
			var ruleErr *domain.RuleError
			require.True(t, errors.As(err, &ruleErr))
			assert.Equal(t, tc.rule, ruleErr.Rule)
		})
	}
}

func TestValidateReservationRulesPastBooking(t *testing.T) {
	now := time.Date(2026, time.September, 10, 12, 0, 0, 0, time.UTC)

	area := testArea()
	area.MinNoticeMinutes = 0

	err := domain.ValidateReservationRules(area,
		now.Add(-2*time.Hour), now.Add(-time.Hour), now, 0)

	var ruleErr *domain.RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, domain.RuleAdvanceNotice, ruleErr.Rule)
}

func TestQuotaPeriod(t *testing.T) {
	startsAt := time.Date(2026, time.September, 18, 15, 30, 0, 0, time.UTC)

	from, to := domain.QuotaPeriod(startsAt)

	assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestInitialReservationStatus(t *testing.T) {
	cases := []struct {
		name        string
		autoApprove bool
		autoConfirm bool
		expected    domain.ItemStatus
	}{
		{name: "manual approval", expected: domain.StatusPending},
		{name: "auto approve only", autoApprove: true, expected: domain.StatusApproved},
		{name: "auto approve and confirm", autoApprove: true, autoConfirm: true, expected: domain.StatusConfirmed},
		{name: "auto confirm without approve is ignored", autoConfirm: true, expected: domain.StatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			area := testArea()
			area.AutoApprove = tc.autoApprove
			area.AutoConfirm = tc.autoConfirm
			assert.Equal(t, tc.expected, area.InitialReservationStatus())
		})
	}
}
