package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentEvent is one entry in a plan's append-only ledger.
// Events are never mutated or deleted; the plan's total_paid is always the
// sum of its events.
type PaymentEvent struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	PlanID      uuid.UUID       `json:"plan_id" db:"plan_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
	Notes       string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

type RecordPaymentResponse struct {
	Plan  *InstallmentPlan `json:"plan"`
	Event *PaymentEvent    `json:"event"`
}

type LedgerResponse struct {
	PlanID    uuid.UUID       `json:"plan_id"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Events    []*PaymentEvent `json:"events"`
}
