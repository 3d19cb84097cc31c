package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/novaterra/installment-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByPlanID(ctx context.Context, planID uuid.UUID) ([]*domain.PaymentEvent, error) {
	query := `
		SELECT id, plan_id, amount, payment_date, notes, created_at
		FROM payment_events
		WHERE plan_id = $1
		ORDER BY payment_date, created_at
	`

	var events []*domain.PaymentEvent
	err := r.db.SelectContext(ctx, &events, query, planID)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *paymentRepository) CountByPlanID(ctx context.Context, planID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM payment_events WHERE plan_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, planID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
