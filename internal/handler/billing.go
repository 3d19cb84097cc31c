package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/novaterra/installment-engine/internal/domain"
	"github.com/novaterra/installment-engine/internal/service"
	customError "github.com/novaterra/installment-engine/pkg/errors"
	"github.com/novaterra/installment-engine/pkg/response"
)

type BillingHandler struct {
	service   *service.BillingService
	validator *validator.Validate
}

func NewBillingHandler(service *service.BillingService) *BillingHandler {
	v := validator.New()

	// Let validator treat decimal fields as plain numbers.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &BillingHandler{
		service:   service,
		validator: v,
	}
}

// CreateProperty handles POST /api/v1/properties
func (h *BillingHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var request domain.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.UnprocessableEntity(w, "Request validation failed", err)
		return
	}

	property, err := h.service.CreateProperty(r.Context(), &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, property)
}

// GetProperty handles GET /api/v1/properties/{propertyId}
func (h *BillingHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := parseUUID(w, r, "propertyId")
	if !ok {
		return
	}

	property, err := h.service.GetProperty(r.Context(), propertyID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, property)
}

// GetQuote handles GET /api/v1/properties/{propertyId}/quote?area=..&duration_months=..
func (h *BillingHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := parseUUID(w, r, "propertyId")
	if !ok {
		return
	}

	areaParam := r.URL.Query().Get("area")
	area, err := decimal.NewFromString(areaParam)
	if err != nil {
		response.BadRequest(w, "Query parameter 'area' must be a number", err)
		return
	}

	durationMonths := 0
	if durationParam := r.URL.Query().Get("duration_months"); durationParam != "" {
		durationMonths, err = strconv.Atoi(durationParam)
		if err != nil {
			response.BadRequest(w, "Query parameter 'duration_months' must be an integer", err)
			return
		}
	}

	quote, err := h.service.GetQuote(r.Context(), propertyID, area, durationMonths)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, &domain.QuoteResponse{
		PropertyID: propertyID.String(),
		Quote:      quote,
	})
}

// CreatePlan handles POST /api/v1/bookings/{bookingId}/plan
func (h *BillingHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]
	if bookingID == "" {
		response.BadRequest(w, "Booking ID is required", nil)
		return
	}

	var request domain.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), bookingID, &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, plan)
}

// GetPlan handles GET /api/v1/bookings/{bookingId}/plan
func (h *BillingHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]
	if bookingID == "" {
		response.BadRequest(w, "Booking ID is required", nil)
		return
	}

	plan, err := h.service.GetPlan(r.Context(), bookingID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, plan)
}

// RecordPayment handles POST /api/v1/plans/{planId}/payments
func (h *BillingHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	planID, ok := parseUUID(w, r, "planId")
	if !ok {
		return
	}

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.UnprocessableEntity(w, "Request validation failed", err)
		return
	}

	var paymentDate time.Time
	if request.PaymentDate != nil {
		paymentDate = *request.PaymentDate
	}
	plan, event, err := h.service.RecordPayment(r.Context(), planID, request.Amount, paymentDate, request.Notes)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, &domain.RecordPaymentResponse{
		Plan:  plan,
		Event: event,
	})
}

// GetLedger handles GET /api/v1/plans/{planId}/payments
func (h *BillingHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	planID, ok := parseUUID(w, r, "planId")
	if !ok {
		return
	}

	ledger, err := h.service.GetLedger(r.Context(), planID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, ledger)
}

// OverrideStatus handles PUT /api/v1/plans/{planId}/status
func (h *BillingHandler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	planID, ok := parseUUID(w, r, "planId")
	if !ok {
		return
	}

	var request domain.OverrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.UnprocessableEntity(w, "Request validation failed", err)
		return
	}

	plan, err := h.service.OverrideStatus(r.Context(), planID, request.Status)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, plan)
}

func parseUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Path parameter '"+name+"' must be a UUID", err)
		return uuid.Nil, false
	}
	return id, true
}

// writeBusinessError maps business error codes onto HTTP statuses.
func writeBusinessError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if !errors.As(err, &bizErr) {
		response.InternalServerError(w, "Unexpected error", err)
		return
	}

	switch bizErr.Code {
	case customError.ErrCodePlanNotFound, customError.ErrCodePropertyNotFound:
		response.ErrorWithCode(w, http.StatusNotFound, bizErr.Code, bizErr.Message, bizErr.Err)
	case customError.ErrCodeDuplicatePlan,
		customError.ErrCodePlanAlreadySettled,
		customError.ErrCodeConcurrentModification:
		response.ErrorWithCode(w, http.StatusConflict, bizErr.Code, bizErr.Message, bizErr.Err)
	case customError.ErrCodeInvalidConfig,
		customError.ErrCodeInvalidArea,
		customError.ErrCodeInvalidDuration,
		customError.ErrCodeInvalidPaymentAmount,
		customError.ErrCodeInvalidStatus,
		customError.ErrCodeNoInstallmentOption:
		response.ErrorWithCode(w, http.StatusBadRequest, bizErr.Code, bizErr.Message, bizErr.Err)
	default:
		response.ErrorWithCode(w, http.StatusInternalServerError, bizErr.Code, bizErr.Message, bizErr.Err)
	}
}
