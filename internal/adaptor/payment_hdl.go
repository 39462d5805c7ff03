package adaptor

import (
	"encoding/json"
	"net/http"

	"hyperlocal-marketplace/internal/dto/request"
	"hyperlocal-marketplace/internal/usecase"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// CreatePaymentIntent handles POST /api/payment/create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreatePaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create payment intent")
		return
	}

	utils.ResponseCreated(w, "Payment intent created", intent)
}

// ConfirmPayment handles POST /api/payment/confirm-payment
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	status, err := h.service.ConfirmPayment(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "confirm payment")
		return
	}

	utils.ResponseSuccess(w, "Payment confirmed", status)
}

// Refund handles POST /api/payment/refund
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	status, err := h.service.Refund(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "refund payment")
		return
	}

	utils.ResponseSuccess(w, "Payment refunded", status)
}

// GetPaymentStatus handles GET /api/payment/payment-status/{bookingId}
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "bookingId")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	status, err := h.service.GetPaymentStatus(r.Context(), principal, bookingID)
	if err != nil {
		handleServiceError(h.log, w, err, "get payment status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}
