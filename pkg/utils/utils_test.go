package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		expected time.Time
	}{
		{
			name:     "mid-month",
			from:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "year rollover",
			from:     time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "jan 31 normalizes into march",
			from:     time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextDueDate(tt.from))
		})
	}
}

func TestAdHocInstallment(t *testing.T) {
	tests := []struct {
		name     string
		total    decimal.Decimal
		months   int
		expected decimal.Decimal
	}{
		{
			name:     "even split",
			total:    decimal.NewFromInt(120000),
			months:   12,
			expected: decimal.NewFromInt(10000),
		},
		{
			name:     "uneven split rounds up",
			total:    decimal.NewFromInt(100000),
			months:   12,
			expected: decimal.NewFromInt(8334), // 8333.33.. ceiled
		},
		{
			name:     "non-positive months returns total",
			total:    decimal.NewFromInt(5000),
			months:   0,
			expected: decimal.NewFromInt(5000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AdHocInstallment(tt.total, tt.months)
			assert.True(t, result.Equal(tt.expected),
				"expected %v, got %v", tt.expected, result)
		})
	}
}

func TestMinDecimal(t *testing.T) {
	a := decimal.NewFromInt(1000)
	b := decimal.NewFromInt(1240000)

	assert.True(t, MinDecimal(a, b).Equal(a))
	assert.True(t, MinDecimal(b, a).Equal(a))
	assert.True(t, MinDecimal(a, a).Equal(a))
}

func TestIsPastDue(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsPastDue(due, due))
	assert.False(t, IsPastDue(due, due.Add(-time.Hour)))
	assert.True(t, IsPastDue(due, due.Add(time.Hour)))
}
