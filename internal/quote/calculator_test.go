package quote

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/novaterra/installment-engine/internal/domain"
	customError "github.com/novaterra/installment-engine/pkg/errors"
)

func validConfig() *domain.InstallmentConfig {
	return &domain.InstallmentConfig{
		PricePerSqm:            decimal.NewFromInt(50000),
		MinArea:                decimal.NewFromInt(100),
		MaxArea:                decimal.NewFromInt(500),
		MinDepositPercent:      decimal.NewFromInt(20),
		MonthlyInterestPercent: decimal.NewFromInt(2),
		DurationsMonths:        []int{3, 6, 12},
	}
}

func TestComputeQuote(t *testing.T) {
	tests := []struct {
		name            string
		config          *domain.InstallmentConfig
		area            decimal.Decimal
		months          int
		expectedErr     error
		totalPrice      decimal.Decimal
		firstDeposit    decimal.Decimal
		periodicPayment decimal.Decimal
		totalPayable    decimal.Decimal
	}{
		{
			name:   "standard 300sqm over 12 months",
			config: validConfig(),
			area:   decimal.NewFromInt(300),
			months: 12,
			// 15,000,000 total; 3,000,000 deposit; 12,000,000 * 1.24 / 12
			totalPrice:      decimal.NewFromInt(15000000),
			firstDeposit:    decimal.NewFromInt(3000000),
			periodicPayment: decimal.NewFromInt(1240000),
			totalPayable:    decimal.NewFromInt(17880000),
		},
		{
			name: "zero interest degenerates to principal over months",
			config: func() *domain.InstallmentConfig {
				c := validConfig()
				c.MonthlyInterestPercent = decimal.Zero
				return c
			}(),
			area:            decimal.NewFromInt(300),
			months:          12,
			totalPrice:      decimal.NewFromInt(15000000),
			firstDeposit:    decimal.NewFromInt(3000000),
			periodicPayment: decimal.NewFromInt(1000000),
			totalPayable:    decimal.NewFromInt(15000000),
		},
		{
			name:        "area below configured minimum",
			config:      validConfig(),
			area:        decimal.NewFromInt(50),
			months:      12,
			expectedErr: customError.ErrInvalidArea,
		},
		{
			name:        "area above configured maximum",
			config:      validConfig(),
			area:        decimal.NewFromInt(501),
			months:      12,
			expectedErr: customError.ErrInvalidArea,
		},
		{
			name:        "zero months rejected",
			config:      validConfig(),
			area:        decimal.NewFromInt(300),
			months:      0,
			expectedErr: customError.ErrInvalidDuration,
		},
		{
			name:        "term outside offered set rejected",
			config:      validConfig(),
			area:        decimal.NewFromInt(300),
			months:      9,
			expectedErr: customError.ErrInvalidDuration,
		},
		{
			name:        "missing config rejected",
			config:      nil,
			area:        decimal.NewFromInt(300),
			months:      12,
			expectedErr: customError.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ComputeQuote(tt.config, tt.area, tt.months)

			if tt.expectedErr != nil {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedErr), "expected %v, got %v", tt.expectedErr, err)
				assert.Nil(t, quote)
				return
			}

			assert.NoError(t, err)
			assert.True(t, quote.TotalPrice.Equal(tt.totalPrice),
				"total price: expected %v, got %v", tt.totalPrice, quote.TotalPrice)
			assert.True(t, quote.FirstDeposit.Equal(tt.firstDeposit),
				"first deposit: expected %v, got %v", tt.firstDeposit, quote.FirstDeposit)
			assert.True(t, quote.PeriodicPayment.Equal(tt.periodicPayment),
				"periodic payment: expected %v, got %v", tt.periodicPayment, quote.PeriodicPayment)
			assert.True(t, quote.TotalPayable.Equal(tt.totalPayable),
				"total payable: expected %v, got %v", tt.totalPayable, quote.TotalPayable)
		})
	}
}

// The quote must always reconcile: deposit + payment*months == total payable,
// even when the even split does not land on whole currency units.
func TestComputeQuote_Reconciles(t *testing.T) {
	config := validConfig()
	config.PricePerSqm = decimal.NewFromFloat(5123.45)
	config.MinDepositPercent = decimal.NewFromFloat(17.5)
	config.MonthlyInterestPercent = decimal.NewFromFloat(1.25)

	for _, months := range []int{3, 6, 12} {
		for _, area := range []int64{100, 247, 500} {
			quote, err := ComputeQuote(config, decimal.NewFromInt(area), months)
			assert.NoError(t, err)

			recomputed := quote.FirstDeposit.Add(
				quote.PeriodicPayment.Mul(decimal.NewFromInt(int64(months))))
			assert.True(t, quote.TotalPayable.Equal(recomputed),
				"months=%d area=%d: %v != %v", months, area, quote.TotalPayable, recomputed)
			assert.True(t, quote.Principal.Equal(quote.TotalPrice.Sub(quote.FirstDeposit)))
		}
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.InstallmentConfig)
	}{
		{"zero price per sqm", func(c *domain.InstallmentConfig) { c.PricePerSqm = decimal.Zero }},
		{"negative price per sqm", func(c *domain.InstallmentConfig) { c.PricePerSqm = decimal.NewFromInt(-1) }},
		{"zero min area", func(c *domain.InstallmentConfig) { c.MinArea = decimal.Zero }},
		{"inverted area bounds", func(c *domain.InstallmentConfig) { c.MinArea = decimal.NewFromInt(600) }},
		{"zero deposit percent", func(c *domain.InstallmentConfig) { c.MinDepositPercent = decimal.Zero }},
		{"deposit percent at 100", func(c *domain.InstallmentConfig) { c.MinDepositPercent = decimal.NewFromInt(100) }},
		{"negative interest", func(c *domain.InstallmentConfig) { c.MonthlyInterestPercent = decimal.NewFromInt(-1) }},
		{"interest at 100", func(c *domain.InstallmentConfig) { c.MonthlyInterestPercent = decimal.NewFromInt(100) }},
		{"non-positive duration", func(c *domain.InstallmentConfig) { c.DurationsMonths = []int{0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := ValidateConfig(config)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, customError.ErrInvalidConfig))
		})
	}

	assert.NoError(t, ValidateConfig(validConfig()))
}
