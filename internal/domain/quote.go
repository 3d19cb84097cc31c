package domain

import "github.com/shopspring/decimal"

// InstallmentQuote is derived on demand and never persisted. It is safe to
// recompute for every preview request as the buyer adjusts area or term.
type InstallmentQuote struct {
	Area            decimal.Decimal `json:"area"`
	DurationMonths  int             `json:"duration_months"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	FirstDeposit    decimal.Decimal `json:"first_deposit"`
	Principal       decimal.Decimal `json:"principal"`
	PeriodicPayment decimal.Decimal `json:"periodic_payment"`
	TotalPayable    decimal.Decimal `json:"total_payable"`
}

type QuoteResponse struct {
	PropertyID string            `json:"property_id"`
	Quote      *InstallmentQuote `json:"quote"`
}
