package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/novaterra/installment-engine/internal/domain"
)

// PropertyRepository defines the interface for property data operations
type PropertyRepository interface {
	// Create creates a new property, with its installment config when present
	Create(ctx context.Context, property *domain.Property) error

	// GetByID retrieves a property by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
}

// PlanRepository defines the interface for installment plan data operations
type PlanRepository interface {
	// Create creates a new installment plan
	Create(ctx context.Context, plan *domain.InstallmentPlan) error

	// GetByID retrieves a plan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentPlan, error)

	// GetByBookingID retrieves the plan owned by a booking
	GetByBookingID(ctx context.Context, bookingID string) (*domain.InstallmentPlan, error)

	// ApplyPayment writes the mutated plan and appends the payment event in
	// one transaction, guarded by the plan version read by the caller
	ApplyPayment(ctx context.Context, plan *domain.InstallmentPlan, event *domain.PaymentEvent) error

	// UpdateStatus writes a status change, guarded by the plan version
	UpdateStatus(ctx context.Context, plan *domain.InstallmentPlan) error

	// ListDue lists unsettled plans whose next payment date has elapsed
	ListDue(ctx context.Context, asOf time.Time) ([]*domain.InstallmentPlan, error)
}

// PaymentRepository defines the interface for payment ledger reads
type PaymentRepository interface {
	// GetByPlanID retrieves all payment events for a plan, oldest first
	GetByPlanID(ctx context.Context, planID uuid.UUID) ([]*domain.PaymentEvent, error)

	// CountByPlanID counts payment events recorded against a plan
	CountByPlanID(ctx context.Context, planID uuid.UUID) (int, error)
}
