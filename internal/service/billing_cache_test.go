package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/novaterra/installment-engine/internal/domain"
	"github.com/novaterra/installment-engine/tests/mocks"
)

func newCachedService(t *testing.T, planRepo *mocks.MockPlanRepository, paymentRepo *mocks.MockPaymentRepository) (*BillingService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := NewBillingService(&mocks.MockPropertyRepository{}, planRepo, paymentRepo, client, testConfig())
	svc.Clock = func() time.Time { return testTime }
	return svc, mr
}

func TestGetPlan_CachesResponse(t *testing.T) {
	planRepo := &mocks.MockPlanRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc, mr := newCachedService(t, planRepo, paymentRepo)

	plan := activePlan(17880000, 1240000, 2480000)

	// The store must be hit exactly once; the second read is served from
	// the cache.
	planRepo.On("GetByBookingID", mock.Anything, "BK-1001").Return(plan, nil).Once()
	paymentRepo.On("CountByPlanID", mock.Anything, plan.ID).Return(2, nil).Once()

	first, err := svc.GetPlan(context.Background(), "BK-1001")
	assert.NoError(t, err)

	assert.True(t, mr.Exists("plan:booking:BK-1001"))
	assert.Equal(t, 10*time.Minute, mr.TTL("plan:booking:BK-1001"))

	second, err := svc.GetPlan(context.Background(), "BK-1001")
	assert.NoError(t, err)
	assert.Equal(t, first.PaymentsMade, second.PaymentsMade)
	assert.True(t, second.Remaining.Equal(first.Remaining))
	assert.Equal(t, first.DerivedStatus, second.DerivedStatus)

	planRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestRecordPayment_InvalidatesCache(t *testing.T) {
	planRepo := &mocks.MockPlanRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc, mr := newCachedService(t, planRepo, paymentRepo)

	plan := activePlan(17880000, 1240000, 0)

	planRepo.On("GetByBookingID", mock.Anything, plan.BookingID).Return(plan, nil)
	paymentRepo.On("CountByPlanID", mock.Anything, plan.ID).Return(0, nil)
	planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
	planRepo.On("ApplyPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.GetPlan(context.Background(), plan.BookingID)
	assert.NoError(t, err)
	assert.True(t, mr.Exists("plan:booking:"+plan.BookingID))

	_, _, err = svc.RecordPayment(context.Background(), plan.ID, decimal.NewFromInt(1240000), testTime, "")
	assert.NoError(t, err)

	assert.False(t, mr.Exists("plan:booking:"+plan.BookingID))
}

func TestOverrideStatus_InvalidatesCache(t *testing.T) {
	planRepo := &mocks.MockPlanRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	svc, mr := newCachedService(t, planRepo, paymentRepo)

	plan := activePlan(17880000, 1240000, 0)

	planRepo.On("GetByBookingID", mock.Anything, plan.BookingID).Return(plan, nil)
	paymentRepo.On("CountByPlanID", mock.Anything, plan.ID).Return(0, nil)
	planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
	planRepo.On("UpdateStatus", mock.Anything, plan).Return(nil)

	_, err := svc.GetPlan(context.Background(), plan.BookingID)
	assert.NoError(t, err)
	assert.True(t, mr.Exists("plan:booking:"+plan.BookingID))

	_, err = svc.OverrideStatus(context.Background(), plan.ID, domain.PlanStatusBehind)
	assert.NoError(t, err)

	assert.False(t, mr.Exists("plan:booking:"+plan.BookingID))
}

func TestGetPlan_CacheFailureIsNonFatal(t *testing.T) {
	planRepo := &mocks.MockPlanRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}

	// Nothing is listening here; every cache call fails fast.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { client.Close() })

	svc := NewBillingService(&mocks.MockPropertyRepository{}, planRepo, paymentRepo, client, testConfig())
	svc.Clock = func() time.Time { return testTime }

	plan := activePlan(17880000, 1240000, 1240000)

	planRepo.On("GetByBookingID", mock.Anything, plan.BookingID).Return(plan, nil)
	paymentRepo.On("CountByPlanID", mock.Anything, plan.ID).Return(1, nil)
	planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
	planRepo.On("ApplyPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.GetPlan(context.Background(), plan.BookingID)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.PaymentsMade)

	updated, _, err := svc.RecordPayment(context.Background(), plan.ID, decimal.NewFromInt(1240000), testTime, "")
	assert.NoError(t, err)
	assert.True(t, updated.TotalPaid.Equal(decimal.NewFromInt(2480000)))
}
