package quote

import (
	"github.com/shopspring/decimal"

	"github.com/novaterra/installment-engine/internal/domain"
	customError "github.com/novaterra/installment-engine/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// ComputeQuote prices an installment purchase of `area` square meters under
// the property's financing config, over `months` periods.
//
// The model is flat simple interest: interest is charged once on the
// principal for the full term and the result is split evenly across periods.
// This is the pricing every buyer has already been shown, so it must not be
// replaced with an amortizing formula.
//
//	totalPrice      = pricePerSqm * area
//	firstDeposit    = (minDepositPercent / 100) * totalPrice
//	principal       = totalPrice - firstDeposit
//	periodicPayment = (principal * (1 + monthlyRate * months)) / months
//	totalPayable    = firstDeposit + periodicPayment * months
//
// Pure function, no side effects; callers may invoke it on every slider move.
func ComputeQuote(config *domain.InstallmentConfig, area decimal.Decimal, months int) (*domain.InstallmentQuote, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	if months <= 0 {
		return nil, customError.WrapInvalidDuration(months)
	}
	if len(config.DurationsMonths) > 0 && !config.AllowsDuration(months) {
		return nil, customError.WrapInvalidDuration(months)
	}

	if area.LessThan(config.MinArea) || area.GreaterThan(config.MaxArea) {
		return nil, customError.WrapInvalidArea(
			area.String(), config.MinArea.String(), config.MaxArea.String())
	}

	totalPrice := config.PricePerSqm.Mul(area)
	firstDeposit := config.MinDepositPercent.Div(hundred).Mul(totalPrice)
	principal := totalPrice.Sub(firstDeposit)

	monthlyRate := config.MonthlyInterestPercent.Div(hundred)
	termFactor := decimal.NewFromInt(1).Add(monthlyRate.Mul(decimal.NewFromInt(int64(months))))

	// Round to 2 decimal places for currency
	periodicPayment := principal.Mul(termFactor).Div(decimal.NewFromInt(int64(months))).Round(2)

	// Derived from the rounded payment so deposit + payment*months always
	// reconciles exactly with what the buyer is billed.
	totalPayable := firstDeposit.Add(periodicPayment.Mul(decimal.NewFromInt(int64(months))))

	return &domain.InstallmentQuote{
		Area:            area,
		DurationMonths:  months,
		TotalPrice:      totalPrice,
		FirstDeposit:    firstDeposit,
		Principal:       principal,
		PeriodicPayment: periodicPayment,
		TotalPayable:    totalPayable,
	}, nil
}

// ValidateConfig checks an installment config for the invariants a quote
// computation relies on.
func ValidateConfig(config *domain.InstallmentConfig) error {
	if config == nil {
		return customError.WrapInvalidConfig("installment config is missing")
	}
	if !config.PricePerSqm.IsPositive() {
		return customError.WrapInvalidConfig("price per sqm must be positive")
	}
	if !config.MinArea.IsPositive() || !config.MaxArea.IsPositive() {
		return customError.WrapInvalidConfig("area bounds must be positive")
	}
	if config.MinArea.GreaterThan(config.MaxArea) {
		return customError.WrapInvalidConfig("min area exceeds max area")
	}
	if !config.MinDepositPercent.IsPositive() || config.MinDepositPercent.GreaterThanOrEqual(hundred) {
		return customError.WrapInvalidConfig("deposit percent must be in (0, 100)")
	}
	if config.MonthlyInterestPercent.IsNegative() || config.MonthlyInterestPercent.GreaterThanOrEqual(hundred) {
		return customError.WrapInvalidConfig("interest percent must be in [0, 100)")
	}
	for _, d := range config.DurationsMonths {
		if d <= 0 {
			return customError.WrapInvalidConfig("duration months must be positive")
		}
	}
	return nil
}
