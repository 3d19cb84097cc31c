package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDurationRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		durations []int
		joined    string
	}{
		{"standard terms", []int{3, 6, 12}, "3,6,12"},
		{"single term", []int{12}, "12"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.joined, joinDurations(tt.durations))
			assert.Equal(t, tt.durations, splitDurations(tt.joined))
		})
	}
}

func TestSplitDurations_IgnoresGarbage(t *testing.T) {
	assert.Equal(t, []int{3, 12}, splitDurations("3, x, 12, "))
}

func TestPropertyRowToDomain(t *testing.T) {
	price := decimal.NewFromInt(50000)
	minArea := decimal.NewFromInt(100)
	maxArea := decimal.NewFromInt(500)
	deposit := decimal.NewFromInt(20)
	interest := decimal.NewFromInt(2)
	durations := "3,6,12"

	row := &propertyRow{
		ID:                     uuid.New(),
		Reference:              "NT-0042",
		Title:                  "Harmony Court Block B",
		PricePerSqm:            &price,
		MinArea:                &minArea,
		MaxArea:                &maxArea,
		MinDepositPercent:      &deposit,
		MonthlyInterestPercent: &interest,
		DurationsMonths:        &durations,
		CreatedAt:              time.Now(),
		UpdatedAt:              time.Now(),
	}

	property := row.toDomain()
	assert.True(t, property.HasInstallmentOption())
	assert.Equal(t, []int{3, 6, 12}, property.Config.DurationsMonths)
	assert.True(t, property.Config.PricePerSqm.Equal(price))
}

func TestPropertyRowToDomain_CashOnly(t *testing.T) {
	row := &propertyRow{
		ID:        uuid.New(),
		Reference: "NT-0099",
		Title:     "Cedar Rise Duplex",
	}

	property := row.toDomain()
	assert.False(t, property.HasInstallmentOption())
	assert.Nil(t, property.Config)
}
