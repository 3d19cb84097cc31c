package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/novaterra/installment-engine/internal/domain"
	customError "github.com/novaterra/installment-engine/pkg/errors"
)

const pqUniqueViolation = "23505"

type planRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *domain.InstallmentPlan) error {
	query := `
		INSERT INTO installment_plans (id, booking_id, property_id, total_amount, periodic_payment,
			total_paid, next_payment_date, next_payment_amount, status, status_overridden,
			version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.BookingID,
		plan.PropertyID,
		plan.TotalAmount,
		plan.PeriodicPayment,
		plan.TotalPaid,
		plan.NextPaymentDate,
		plan.NextPaymentAmount,
		plan.Status,
		plan.StatusOverridden,
		plan.Version,
		plan.CreatedAt,
		plan.UpdatedAt,
	)

	// The unique index on booking_id backs the one-plan-per-booking rule
	// even when two create requests race past the service's existence check.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return customError.WrapDuplicatePlan(plan.BookingID)
	}

	return err
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InstallmentPlan, error) {
	query := `
		SELECT id, booking_id, property_id, total_amount, periodic_payment, total_paid,
			next_payment_date, next_payment_amount, status, status_overridden,
			version, created_at, updated_at
		FROM installment_plans
		WHERE id = $1
	`

	var plan domain.InstallmentPlan
	err := r.db.GetContext(ctx, &plan, query, id)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *planRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.InstallmentPlan, error) {
	query := `
		SELECT id, booking_id, property_id, total_amount, periodic_payment, total_paid,
			next_payment_date, next_payment_amount, status, status_overridden,
			version, created_at, updated_at
		FROM installment_plans
		WHERE booking_id = $1
	`

	var plan domain.InstallmentPlan
	err := r.db.GetContext(ctx, &plan, query, bookingID)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

// ApplyPayment persists the mutated plan and its new ledger event atomically.
// The UPDATE is conditional on the version the caller read; a stale version
// means another request already applied a payment, and the whole transaction
// is abandoned with a concurrent-modification error for the caller to retry.
func (r *planRepository) ApplyPayment(ctx context.Context, plan *domain.InstallmentPlan, event *domain.PaymentEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE installment_plans
		SET total_paid = $2, next_payment_date = $3, next_payment_amount = $4,
			status = $5, status_overridden = $6, version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $8
	`

	result, err := tx.ExecContext(ctx, updateQuery,
		plan.ID,
		plan.TotalPaid,
		plan.NextPaymentDate,
		plan.NextPaymentAmount,
		plan.Status,
		plan.StatusOverridden,
		time.Now(),
		plan.Version,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.WrapConcurrentModification(plan.ID.String())
	}

	insertQuery := `
		INSERT INTO payment_events (id, plan_id, amount, payment_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.ExecContext(ctx, insertQuery,
		event.ID,
		event.PlanID,
		event.Amount,
		event.PaymentDate,
		event.Notes,
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *planRepository) UpdateStatus(ctx context.Context, plan *domain.InstallmentPlan) error {
	query := `
		UPDATE installment_plans
		SET status = $2, status_overridden = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Status,
		plan.StatusOverridden,
		time.Now(),
		plan.Version,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.WrapConcurrentModification(plan.ID.String())
	}

	return nil
}

func (r *planRepository) ListDue(ctx context.Context, asOf time.Time) ([]*domain.InstallmentPlan, error) {
	query := `
		SELECT id, booking_id, property_id, total_amount, periodic_payment, total_paid,
			next_payment_date, next_payment_amount, status, status_overridden,
			version, created_at, updated_at
		FROM installment_plans
		WHERE status NOT IN ($1, $2) AND next_payment_date IS NOT NULL AND next_payment_date < $3
		ORDER BY next_payment_date
	`

	var plans []*domain.InstallmentPlan
	err := r.db.SelectContext(ctx, &plans, query,
		domain.PlanStatusPaidInFull, domain.PlanStatusCompleted, asOf)
	if err != nil {
		return nil, err
	}

	return plans, nil
}
