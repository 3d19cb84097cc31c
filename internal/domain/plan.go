package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan status values
const (
	PlanStatusOnTrack    = "on_track"
	PlanStatusBehind     = "behind"
	PlanStatusOverdue    = "overdue"
	PlanStatusPaidInFull = "paid_in_full"
	PlanStatusCompleted  = "completed"
)

// IsSettledStatus reports whether a status is terminal.
func IsSettledStatus(status string) bool {
	return status == PlanStatusPaidInFull || status == PlanStatusCompleted
}

// ValidPlanStatus reports whether status is one of the known values.
func ValidPlanStatus(status string) bool {
	switch status {
	case PlanStatusOnTrack, PlanStatusBehind, PlanStatusOverdue,
		PlanStatusPaidInFull, PlanStatusCompleted:
		return true
	}
	return false
}

// InstallmentPlan is the ledger header for one booking's financing.
// Version guards the read-modify-write cycle on totals: every update must
// carry the version it read, and the store rejects stale writes.
type InstallmentPlan struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	BookingID         string           `json:"booking_id" db:"booking_id"`
	PropertyID        *uuid.UUID       `json:"property_id,omitempty" db:"property_id"`
	TotalAmount       decimal.Decimal  `json:"total_amount" db:"total_amount"`
	PeriodicPayment   decimal.Decimal  `json:"periodic_payment" db:"periodic_payment"`
	TotalPaid         decimal.Decimal  `json:"total_paid" db:"total_paid"`
	NextPaymentDate   *time.Time       `json:"next_payment_date" db:"next_payment_date"`
	NextPaymentAmount *decimal.Decimal `json:"next_payment_amount" db:"next_payment_amount"`
	Status            string           `json:"status" db:"status"`
	StatusOverridden  bool             `json:"status_overridden" db:"status_overridden"`
	Version           int64            `json:"-" db:"version"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// Remaining returns the unpaid balance, never negative.
func (p *InstallmentPlan) Remaining() decimal.Decimal {
	remaining := p.TotalAmount.Sub(p.TotalPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Settled reports whether the plan is fully paid.
func (p *InstallmentPlan) Settled() bool {
	return p.TotalPaid.GreaterThanOrEqual(p.TotalAmount)
}

// DTOs for requests and responses

type CreatePlanRequest struct {
	// Quote-backed creation: property, area and duration drive the amounts.
	PropertyID     string          `json:"property_id,omitempty"`
	Area           decimal.Decimal `json:"area,omitempty"`
	DurationMonths int             `json:"duration_months,omitempty"`

	// Ad hoc creation: a total supplied directly by the back office.
	TotalAmount decimal.Decimal `json:"total_amount,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
}

type PlanResponse struct {
	Plan          *InstallmentPlan `json:"plan"`
	Remaining     decimal.Decimal  `json:"remaining"`
	PaymentsMade  int              `json:"payments_made"`
	DerivedStatus string           `json:"derived_status"`
}

type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
