package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/novaterra/installment-engine/internal/config"
	"github.com/novaterra/installment-engine/internal/domain"
	"github.com/novaterra/installment-engine/internal/quote"
	"github.com/novaterra/installment-engine/internal/repository"
	customError "github.com/novaterra/installment-engine/pkg/errors"
	"github.com/novaterra/installment-engine/pkg/utils"
)

const planCacheKeyPrefix = "plan:booking:"

type BillingService struct {
	PropertyRepo repository.PropertyRepository
	PlanRepo     repository.PlanRepository
	PaymentRepo  repository.PaymentRepository

	// Clock is overridable so status derivation is testable; nil means wall time.
	Clock func() time.Time

	redis  *redis.Client
	config *config.Config
}

func NewBillingService(
	propertyRepo repository.PropertyRepository,
	planRepo repository.PlanRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *BillingService {
	return &BillingService{
		PropertyRepo: propertyRepo,
		PlanRepo:     planRepo,
		PaymentRepo:  paymentRepo,
		redis:        redisClient,
		config:       cfg,
	}
}

func (s *BillingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// CreateProperty stores a new listing, validating the installment config
// when one is supplied.
func (s *BillingService) CreateProperty(ctx context.Context, request *domain.CreatePropertyRequest) (*domain.Property, error) {
	now := s.now()
	property := &domain.Property{
		ID:        uuid.New(),
		Reference: request.Reference,
		Title:     request.Title,
		City:      request.City,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if request.Config != nil {
		cfg := &domain.InstallmentConfig{
			PricePerSqm:            request.Config.PricePerSqm,
			MinArea:                request.Config.MinArea,
			MaxArea:                request.Config.MaxArea,
			MinDepositPercent:      request.Config.MinDepositPercent,
			MonthlyInterestPercent: request.Config.MonthlyInterestPercent,
			DurationsMonths:        request.Config.DurationsMonths,
		}
		if len(cfg.DurationsMonths) == 0 {
			cfg.DurationsMonths = s.config.GetAllowedDurations()
		}
		if err := quote.ValidateConfig(cfg); err != nil {
			return nil, err
		}
		property.Config = cfg
	}

	if err := s.PropertyRepo.Create(ctx, property); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return property, nil
}

// GetProperty fetches a listing by ID.
func (s *BillingService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*domain.Property, error) {
	property, err := s.PropertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPropertyNotFound(propertyID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return property, nil
}

// GetQuote prices an installment purchase of the property over the chosen
// area and term. Quotes are never persisted.
func (s *BillingService) GetQuote(ctx context.Context, propertyID uuid.UUID, area decimal.Decimal, durationMonths int) (*domain.InstallmentQuote, error) {
	property, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if !property.HasInstallmentOption() {
		return nil, customError.WrapNoInstallmentOption(propertyID.String())
	}

	if durationMonths == 0 {
		durationMonths = s.config.Business.DefaultDurationMonths
	}

	return quote.ComputeQuote(property.Config, area, durationMonths)
}

// CreatePlan opens the installment ledger for a booking. A request carrying
// a property, area and term is priced through the quote calculator; a
// request carrying only a total amount opens an ad hoc plan split over the
// default term.
func (s *BillingService) CreatePlan(ctx context.Context, bookingID string, request *domain.CreatePlanRequest) (*domain.InstallmentPlan, error) {
	existing, err := s.PlanRepo.GetByBookingID(ctx, bookingID)
	if err == nil && existing != nil {
		return nil, customError.WrapDuplicatePlan(bookingID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	startDate := s.now()
	if request.StartDate != nil {
		startDate = *request.StartDate
	}

	var totalAmount, periodicPayment decimal.Decimal
	var propertyID *uuid.UUID

	switch {
	case request.PropertyID != "":
		id, parseErr := uuid.Parse(request.PropertyID)
		if parseErr != nil {
			return nil, customError.WrapPropertyNotFound(request.PropertyID)
		}
		q, quoteErr := s.GetQuote(ctx, id, request.Area, request.DurationMonths)
		if quoteErr != nil {
			return nil, quoteErr
		}
		totalAmount = q.TotalPayable
		periodicPayment = q.PeriodicPayment
		propertyID = &id

	case request.TotalAmount.IsPositive():
		// Ad hoc plan opened by the back office with no quoted config:
		// split over the default term.
		totalAmount = request.TotalAmount
		periodicPayment = utils.AdHocInstallment(totalAmount, s.config.Business.DefaultDurationMonths)

	default:
		return nil, customError.WrapInvalidConfig("plan requires either a property quote or a positive total amount")
	}

	nextDate := utils.NextDueDate(startDate)
	nextAmount := utils.MinDecimal(totalAmount, periodicPayment)

	now := s.now()
	plan := &domain.InstallmentPlan{
		ID:                uuid.New(),
		BookingID:         bookingID,
		PropertyID:        propertyID,
		TotalAmount:       totalAmount,
		PeriodicPayment:   periodicPayment,
		TotalPaid:         decimal.Zero,
		NextPaymentDate:   &nextDate,
		NextPaymentAmount: &nextAmount,
		Status:            domain.PlanStatusOnTrack,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.PlanRepo.Create(ctx, plan); err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) {
			return nil, err
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return plan, nil
}

// GetPlan returns the plan owned by a booking, with its time-derived status
// and ledger summary. Responses are cached briefly in Redis; cache failures
// are logged and the request proceeds against the store.
func (s *BillingService) GetPlan(ctx context.Context, bookingID string) (*domain.PlanResponse, error) {
	if cached := s.readPlanCache(ctx, bookingID); cached != nil {
		return cached, nil
	}

	plan, err := s.PlanRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPlanNotFound(bookingID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	count, err := s.PaymentRepo.CountByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result := &domain.PlanResponse{
		Plan:          plan,
		Remaining:     plan.Remaining(),
		PaymentsMade:  count,
		DerivedStatus: s.DeriveStatus(plan, s.now()),
	}

	s.writePlanCache(ctx, bookingID, result)

	return result, nil
}

// GetLedger returns the append-only payment history of a plan.
func (s *BillingService) GetLedger(ctx context.Context, planID uuid.UUID) (*domain.LedgerResponse, error) {
	plan, err := s.PlanRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPlanNotFound(planID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	events, err := s.PaymentRepo.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LedgerResponse{
		PlanID:    plan.ID,
		TotalPaid: plan.TotalPaid,
		Events:    events,
	}, nil
}

// DeriveStatus computes the time-based payment health of a plan. A manual
// admin override sticks until the next payment event recomputes it.
func (s *BillingService) DeriveStatus(plan *domain.InstallmentPlan, asOf time.Time) string {
	if plan.Settled() {
		if plan.Status == domain.PlanStatusCompleted {
			return domain.PlanStatusCompleted
		}
		return domain.PlanStatusPaidInFull
	}
	if plan.StatusOverridden {
		return plan.Status
	}
	if plan.NextPaymentDate != nil && utils.IsPastDue(*plan.NextPaymentDate, asOf) {
		return domain.PlanStatusOverdue
	}
	return domain.PlanStatusOnTrack
}

// RecordPayment appends a payment event to a plan's ledger and rolls the
// plan's totals, due date and status forward. The write is atomic against
// the store; on a version conflict the plan is re-read and the payment
// applied once more before the conflict surfaces to the caller.
func (s *BillingService) RecordPayment(ctx context.Context, planID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, notes string) (*domain.InstallmentPlan, *domain.PaymentEvent, error) {
	if !amount.IsPositive() {
		return nil, nil, customError.WrapInvalidPaymentAmount(amount.String())
	}

	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	plan, event, err := s.applyPayment(ctx, planID, amount, paymentDate, notes)
	if errors.Is(err, customError.ErrConcurrentModification) {
		// Single retry against the fresh plan state, per the double-submit rule.
		plan, event, err = s.applyPayment(ctx, planID, amount, paymentDate, notes)
	}
	if err != nil {
		return nil, nil, err
	}

	s.invalidatePlanCache(ctx, plan.BookingID)

	return plan, event, nil
}

func (s *BillingService) applyPayment(ctx context.Context, planID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, notes string) (*domain.InstallmentPlan, *domain.PaymentEvent, error) {
	plan, err := s.PlanRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.WrapPlanNotFound(planID.String())
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if plan.Settled() || domain.IsSettledStatus(plan.Status) {
		return nil, nil, customError.WrapPlanAlreadySettled(plan.ID.String())
	}

	event := &domain.PaymentEvent{
		ID:          uuid.New(),
		PlanID:      plan.ID,
		Amount:      amount,
		PaymentDate: paymentDate,
		Notes:       notes,
		CreatedAt:   s.now(),
	}

	plan.TotalPaid = plan.TotalPaid.Add(amount)
	plan.StatusOverridden = false

	if plan.Settled() {
		plan.Status = domain.PlanStatusPaidInFull
		plan.NextPaymentDate = nil
		plan.NextPaymentAmount = nil
	} else {
		base := paymentDate
		if plan.NextPaymentDate != nil {
			base = *plan.NextPaymentDate
		}
		nextDate := utils.NextDueDate(base)
		// The final installment is clamped to the balance so the plan
		// never asks for an overpayment.
		nextAmount := utils.MinDecimal(plan.Remaining(), plan.PeriodicPayment)
		plan.NextPaymentDate = &nextDate
		plan.NextPaymentAmount = &nextAmount
		plan.Status = s.DeriveStatus(plan, s.now())
	}

	if err := s.PlanRepo.ApplyPayment(ctx, plan, event); err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) {
			return nil, nil, err
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}
	plan.Version++

	return plan, event, nil
}

// OverrideStatus lets the back office set a plan's status directly. The
// override is serialized against payment recording through the same version
// check, retried once against fresh state on a conflict, and holds until the
// next payment event.
func (s *BillingService) OverrideStatus(ctx context.Context, planID uuid.UUID, status string) (*domain.InstallmentPlan, error) {
	if !domain.ValidPlanStatus(status) {
		return nil, customError.WrapInvalidStatus(status)
	}

	plan, err := s.applyOverride(ctx, planID, status)
	if errors.Is(err, customError.ErrConcurrentModification) {
		plan, err = s.applyOverride(ctx, planID, status)
	}
	if err != nil {
		return nil, err
	}

	s.invalidatePlanCache(ctx, plan.BookingID)

	return plan, nil
}

func (s *BillingService) applyOverride(ctx context.Context, planID uuid.UUID, status string) (*domain.InstallmentPlan, error) {
	plan, err := s.PlanRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPlanNotFound(planID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	plan.Status = status
	plan.StatusOverridden = true

	if err := s.PlanRepo.UpdateStatus(ctx, plan); err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) {
			return nil, err
		}
		return nil, customError.WrapDatabaseError(err)
	}
	plan.Version++

	return plan, nil
}

// MarkOverduePlans flips unsettled plans past their due date to overdue.
// Invoked by the scheduler; plans under a manual override are left alone,
// and per-plan version conflicts are skipped rather than retried since the
// next sweep will catch them.
func (s *BillingService) MarkOverduePlans(ctx context.Context) (int, error) {
	due, err := s.PlanRepo.ListDue(ctx, s.now())
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	marked := 0
	for _, plan := range due {
		if plan.StatusOverridden || plan.Status == domain.PlanStatusOverdue {
			continue
		}
		plan.Status = domain.PlanStatusOverdue
		if err := s.PlanRepo.UpdateStatus(ctx, plan); err != nil {
			if errors.Is(err, customError.ErrConcurrentModification) {
				continue
			}
			return marked, customError.WrapDatabaseError(err)
		}
		s.invalidatePlanCache(ctx, plan.BookingID)
		marked++
	}

	return marked, nil
}

func (s *BillingService) readPlanCache(ctx context.Context, bookingID string) *domain.PlanResponse {
	if s.redis == nil {
		return nil
	}

	payload, err := s.redis.Get(ctx, planCacheKeyPrefix+bookingID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("plan cache read failed for booking %s: %v", bookingID, err)
		}
		return nil
	}

	var cached domain.PlanResponse
	if err := json.Unmarshal(payload, &cached); err != nil {
		log.Printf("plan cache decode failed for booking %s: %v", bookingID, err)
		return nil
	}

	return &cached
}

func (s *BillingService) writePlanCache(ctx context.Context, bookingID string, response *domain.PlanResponse) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, planCacheKeyPrefix+bookingID, payload, s.config.GetPlanCacheTTL()).Err(); err != nil {
		log.Printf("plan cache write failed for booking %s: %v", bookingID, err)
	}
}

func (s *BillingService) invalidatePlanCache(ctx context.Context, bookingID string) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, planCacheKeyPrefix+bookingID).Err(); err != nil {
		log.Printf("plan cache invalidation failed for booking %s: %v", bookingID, err)
	}
}
