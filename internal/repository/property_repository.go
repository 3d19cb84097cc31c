package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/novaterra/installment-engine/internal/domain"
)

type propertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

// propertyRow flattens the optional installment config into nullable columns.
type propertyRow struct {
	ID                     uuid.UUID        `db:"id"`
	Reference              string           `db:"reference"`
	Title                  string           `db:"title"`
	City                   string           `db:"city"`
	PricePerSqm            *decimal.Decimal `db:"price_per_sqm"`
	MinArea                *decimal.Decimal `db:"min_area"`
	MaxArea                *decimal.Decimal `db:"max_area"`
	MinDepositPercent      *decimal.Decimal `db:"min_deposit_percent"`
	MonthlyInterestPercent *decimal.Decimal `db:"monthly_interest_percent"`
	DurationsMonths        *string          `db:"durations_months"`
	CreatedAt              time.Time        `db:"created_at"`
	UpdatedAt              time.Time        `db:"updated_at"`
}

func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	query := `
		INSERT INTO properties (id, reference, title, city, price_per_sqm, min_area, max_area,
			min_deposit_percent, monthly_interest_percent, durations_months, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var pricePerSqm, minArea, maxArea, minDeposit, monthlyInterest *decimal.Decimal
	var durations *string
	if property.Config != nil {
		pricePerSqm = &property.Config.PricePerSqm
		minArea = &property.Config.MinArea
		maxArea = &property.Config.MaxArea
		minDeposit = &property.Config.MinDepositPercent
		monthlyInterest = &property.Config.MonthlyInterestPercent
		joined := joinDurations(property.Config.DurationsMonths)
		durations = &joined
	}

	_, err := r.db.ExecContext(ctx, query,
		property.ID,
		property.Reference,
		property.Title,
		property.City,
		pricePerSqm,
		minArea,
		maxArea,
		minDeposit,
		monthlyInterest,
		durations,
		property.CreatedAt,
		property.UpdatedAt,
	)

	return err
}

func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `
		SELECT id, reference, title, city, price_per_sqm, min_area, max_area,
			min_deposit_percent, monthly_interest_percent, durations_months, created_at, updated_at
		FROM properties
		WHERE id = $1
	`

	var row propertyRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

func (row *propertyRow) toDomain() *domain.Property {
	property := &domain.Property{
		ID:        row.ID,
		Reference: row.Reference,
		Title:     row.Title,
		City:      row.City,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	// Config is present only when all financing columns are set.
	if row.PricePerSqm != nil && row.MinArea != nil && row.MaxArea != nil && row.MinDepositPercent != nil {
		config := &domain.InstallmentConfig{
			PricePerSqm:       *row.PricePerSqm,
			MinArea:           *row.MinArea,
			MaxArea:           *row.MaxArea,
			MinDepositPercent: *row.MinDepositPercent,
		}
		if row.MonthlyInterestPercent != nil {
			config.MonthlyInterestPercent = *row.MonthlyInterestPercent
		}
		if row.DurationsMonths != nil {
			config.DurationsMonths = splitDurations(*row.DurationsMonths)
		}
		property.Config = config
	}

	return property
}

func joinDurations(durations []int) string {
	parts := make([]string, 0, len(durations))
	for _, d := range durations {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

func splitDurations(joined string) []int {
	var durations []int
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if months, err := strconv.Atoi(part); err == nil {
			durations = append(durations, months)
		}
	}
	return durations
}
