package usecase

import (
	"context"
	"fmt"
	"time"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/data/repository"
	"hyperlocal-marketplace/internal/dto/request"
	"hyperlocal-marketplace/internal/dto/response"
	"hyperlocal-marketplace/internal/gateway"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService interface {
	CreateIntent(ctx context.Context, principal Principal, req *request.CreatePaymentIntentRequest) (*response.PaymentIntentResponse, error)
	ConfirmPayment(ctx context.Context, principal Principal, req *request.ConfirmPaymentRequest) (*response.PaymentStatusResponse, error)
	Refund(ctx context.Context, principal Principal, req *request.RefundRequest) (*response.PaymentStatusResponse, error)
	GetPaymentStatus(ctx context.Context, principal Principal, bookingID string) (*response.PaymentStatusResponse, error)
}

type paymentService struct {
	repo    *repository.Repository
	gateway gateway.PaymentGateway
	timeout time.Duration
	log     *zap.Logger
}

func NewPaymentService(repo *repository.Repository, gw gateway.PaymentGateway, config utils.PaymentConfig, log *zap.Logger) PaymentService {
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &paymentService{
		repo:    repo,
		gateway: gw,
		timeout: timeout,
		log:     log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, principal Principal, req *request.CreatePaymentIntentRequest) (*response.PaymentIntentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	booking, err := s.resolvePayableBooking(ctx, principal, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus == entity.PaymentStatusPaid || booking.PaymentStatus == entity.PaymentStatusRefunded {
		return nil, fmt.Errorf("%w: booking %s payment is already %s", ErrConflict, req.BookingID, booking.PaymentStatus)
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking %s is cancelled", ErrConflict, req.BookingID)
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	intent, err := s.gateway.CreateIntent(gwCtx, booking.ID, booking.TotalAmount)
	if err != nil {
		s.log.Error("Payment intent creation failed",
			zap.Error(err),
			zap.String("booking_id", req.BookingID),
		)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	s.log.Info("Payment intent created",
		zap.String("booking_id", req.BookingID),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount_cents", intent.AmountCents),
	)

	resp := response.IntentToResponse(intent)
	return &resp, nil
}

// ConfirmPayment asks the gateway to settle the intent. A decline marks
// the payment failed and the caller may retry with a new intent; a gateway
// error leaves the booking untouched.
func (s *paymentService) ConfirmPayment(ctx context.Context, principal Principal, req *request.ConfirmPaymentRequest) (*response.PaymentStatusResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	booking, err := s.resolvePayableBooking(ctx, principal, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus == entity.PaymentStatusPaid || booking.PaymentStatus == entity.PaymentStatusRefunded {
		return nil, fmt.Errorf("%w: booking %s payment is already %s", ErrConflict, req.BookingID, booking.PaymentStatus)
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking %s is cancelled", ErrConflict, req.BookingID)
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	success, err := s.gateway.Confirm(gwCtx, req.PaymentIntentID)
	if err != nil {
		s.log.Error("Payment confirmation failed at gateway",
			zap.Error(err),
			zap.String("booking_id", req.BookingID),
			zap.String("intent_id", req.PaymentIntentID),
		)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	target := entity.PaymentStatusPaid
	if !success {
		target = entity.PaymentStatusFailed
	}

	updated, err := s.repo.Booking.UpdatePayment(ctx, booking.ID, target, &req.PaymentIntentID, booking.Version)
	if err != nil {
		return nil, fmt.Errorf("record payment for booking %s: %w", req.BookingID, err)
	}
	if !updated {
		return nil, fmt.Errorf("record payment for booking %s: %w", req.BookingID, ErrConflict)
	}

	booking.PaymentStatus = target
	booking.PaymentID = &req.PaymentIntentID
	booking.Version++

	if !success {
		s.log.Warn("Payment declined",
			zap.String("booking_id", req.BookingID),
			zap.String("intent_id", req.PaymentIntentID),
		)
		return nil, fmt.Errorf("%w: booking %s", ErrPaymentDeclined, req.BookingID)
	}

	s.log.Info("Payment confirmed",
		zap.String("booking_id", req.BookingID),
		zap.String("intent_id", req.PaymentIntentID),
	)

	resp := s.buildPaymentStatus(ctx, booking)
	return &resp, nil
}

// Refund reverses a paid booking. The refund and the cancellation are one
// conditional write, so no reader ever sees a refunded booking that is not
// cancelled.
func (s *paymentService) Refund(ctx context.Context, principal Principal, req *request.RefundRequest) (*response.PaymentStatusResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	booking, err := s.resolveBookingForPrincipal(ctx, principal, req.BookingID, CanRefundBooking)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus != entity.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: booking %s payment is %s, not paid", ErrConflict, req.BookingID, booking.PaymentStatus)
	}
	if booking.Status == entity.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: booking %s is already completed", ErrConflict, req.BookingID)
	}

	paymentID := ""
	if booking.PaymentID != nil {
		paymentID = *booking.PaymentID
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.gateway.Refund(gwCtx, paymentID, req.Reason); err != nil {
		s.log.Error("Refund failed at gateway",
			zap.Error(err),
			zap.String("booking_id", req.BookingID),
			zap.String("payment_id", paymentID),
		)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	updated, err := s.repo.Booking.RefundAndCancel(ctx, booking.ID, booking.Version)
	if err != nil {
		return nil, fmt.Errorf("refund booking %s: %w", req.BookingID, err)
	}
	if !updated {
		return nil, fmt.Errorf("refund booking %s: %w", req.BookingID, ErrConflict)
	}

	s.log.Info("Booking refunded and cancelled",
		zap.String("booking_id", req.BookingID),
		zap.String("payment_id", paymentID),
		zap.String("reason", req.Reason),
	)

	booking.PaymentStatus = entity.PaymentStatusRefunded
	booking.Status = entity.BookingStatusCancelled
	booking.Version++

	resp := s.buildPaymentStatus(ctx, booking)
	return &resp, nil
}

func (s *paymentService) GetPaymentStatus(ctx context.Context, principal Principal, bookingID string) (*response.PaymentStatusResponse, error) {
	booking, err := s.resolveBookingForPrincipal(ctx, principal, bookingID, CanReadBooking)
	if err != nil {
		return nil, err
	}

	resp := s.buildPaymentStatus(ctx, booking)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

// resolvePayableBooking loads the booking and checks the principal may pay
// for it. Only the booking's customer (or an admin) initiates payment.
func (s *paymentService) resolvePayableBooking(ctx context.Context, principal Principal, bookingID string) (*entity.Booking, error) {
	return s.resolveBookingForPrincipal(ctx, principal, bookingID, func(p Principal, b *entity.Booking) bool {
		return p.IsAdmin() || OwnsBookingAsCustomer(p, b)
	})
}

func (s *paymentService) resolveBookingForPrincipal(ctx context.Context, principal Principal, bookingID string, allowed func(Principal, *entity.Booking) bool) (*entity.Booking, error) {
	id, err := parseBookingID(bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	if !allowed(principal, booking) {
		return nil, fmt.Errorf("booking %s payment: %w", bookingID, ErrForbidden)
	}

	return booking, nil
}

func parseBookingID(bookingID string) (uuid.UUID, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid booking ID %s", ErrValidation, bookingID)
	}
	return id, nil
}

func (s *paymentService) buildPaymentStatus(ctx context.Context, booking *entity.Booking) response.PaymentStatusResponse {
	resp := response.PaymentStatusResponse{
		BookingID:     booking.ID.String(),
		TotalAmount:   booking.TotalAmount,
		PaymentStatus: booking.PaymentStatus,
		PaymentID:     booking.PaymentID,
		Status:        booking.Status,
	}

	if service, err := s.repo.Service.FindByID(ctx, booking.ServiceID); err == nil && service != nil {
		resp.Service = &response.BookingServiceSummary{
			ID:          service.ID.String(),
			Name:        service.Name,
			Description: service.Description,
			Price:       service.Price,
			Duration:    service.Duration,
		}
	}

	return resp
}
