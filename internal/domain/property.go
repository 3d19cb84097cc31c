package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is a listed unit that may carry an installment offer.
type Property struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Reference string    `json:"reference" db:"reference"`
	Title     string    `json:"title" db:"title"`
	City      string    `json:"city" db:"city"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Installment offer, absent when the property is cash-only.
	Config *InstallmentConfig `json:"installment_config,omitempty"`
}

// InstallmentConfig is the financing offer attached to a property.
// All fields must be valid before a quote can be computed.
type InstallmentConfig struct {
	PricePerSqm            decimal.Decimal `json:"price_per_sqm" db:"price_per_sqm"`
	MinArea                decimal.Decimal `json:"min_area" db:"min_area"`
	MaxArea                decimal.Decimal `json:"max_area" db:"max_area"`
	MinDepositPercent      decimal.Decimal `json:"min_deposit_percent" db:"min_deposit_percent"`
	MonthlyInterestPercent decimal.Decimal `json:"monthly_interest_percent" db:"monthly_interest_percent"`
	DurationsMonths        []int           `json:"durations_months" db:"-"`
}

// HasInstallmentOption reports whether the property offers financing.
func (p *Property) HasInstallmentOption() bool {
	return p.Config != nil
}

// AllowsDuration reports whether months is one of the offered terms.
func (c *InstallmentConfig) AllowsDuration(months int) bool {
	for _, d := range c.DurationsMonths {
		if d == months {
			return true
		}
	}
	return false
}

// DTOs for requests and responses

type CreatePropertyRequest struct {
	Reference string                  `json:"reference" validate:"required"`
	Title     string                  `json:"title" validate:"required"`
	City      string                  `json:"city"`
	Config    *InstallmentConfigInput `json:"installment_config,omitempty"`
}

type InstallmentConfigInput struct {
	PricePerSqm            decimal.Decimal `json:"price_per_sqm" validate:"required"`
	MinArea                decimal.Decimal `json:"min_area" validate:"required"`
	MaxArea                decimal.Decimal `json:"max_area" validate:"required"`
	MinDepositPercent      decimal.Decimal `json:"min_deposit_percent" validate:"required"`
	MonthlyInterestPercent decimal.Decimal `json:"monthly_interest_percent"`
	DurationsMonths        []int           `json:"durations_months" validate:"omitempty,dive,gt=0"`
}
