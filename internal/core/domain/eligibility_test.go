package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWholeMonthsBetween(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		created time.Time
		months  int
	}{
		{"same instant", now, 0},
		{"exactly six months", time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), 6},
		{"five months and twenty nine days", time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC), 5},
		{"one second short of six months", time.Date(2024, 1, 15, 12, 0, 1, 0, time.UTC), 5},
		{"across years", time.Date(2022, 7, 15, 12, 0, 0, 0, time.UTC), 24},
		{"in the future", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.months, WholeMonthsBetween(tc.created, now))
		})
	}
}

func TestIsCreditEligible(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	t.Run("should be eligible at exactly six months", func(t *testing.T) {
		assert.True(t, IsCreditEligible(now.AddDate(0, -6, 0), now))
	})

	t.Run("should not be eligible at five months and twenty nine days", func(t *testing.T) {
		assert.False(t, IsCreditEligible(now.AddDate(0, -6, 1), now))
	})

	t.Run("should be eligible long after enrollment", func(t *testing.T) {
		assert.True(t, IsCreditEligible(now.AddDate(-3, 0, 0), now))
	})
}
