package usecase

import (
	"context"
	"fmt"
	"time"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/data/repository"
	"hyperlocal-marketplace/internal/dto/request"
	"hyperlocal-marketplace/internal/dto/response"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, principal Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, principal Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetProviderBookings(ctx context.Context, principal Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByID(ctx context.Context, principal Principal, bookingID string) (*response.BookingResponse, error)
	UpdateStatus(ctx context.Context, principal Principal, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, principal Principal, bookingID string) (*response.BookingResponse, error)
	AddRating(ctx context.Context, principal Principal, bookingID string, req *request.AddRatingRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewBookingService(repo *repository.Repository, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		log:  log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, principal Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid service ID %s", ErrValidation, req.ServiceID)
	}

	// Resolve the service
	service, err := s.repo.Service.FindByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("resolve service %s: %w", req.ServiceID, err)
	}
	if service == nil {
		return nil, fmt.Errorf("service %s: %w", req.ServiceID, ErrNotFound)
	}
	if !service.IsActive {
		return nil, fmt.Errorf("%w: service %s is not active", ErrValidation, req.ServiceID)
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid scheduled date %s", ErrValidation, req.ScheduledDate)
	}

	// Snapshot the price at creation; later price edits never touch it.
	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:        principal.UserID,
		ServiceID:     serviceID,
		ProviderID:    service.ProviderID,
		ScheduledDate: scheduledDate,
		ScheduledTime: req.ScheduledTime,
		Address:       req.Address,
		TotalAmount:   service.Price,
		Notes:         req.Notes,
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatusRequiresMethod,
		Version:       1,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", principal.UserID.String()),
			zap.String("service_id", req.ServiceID),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", principal.UserID.String()),
		zap.String("service_id", req.ServiceID),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	resp := s.buildBookingResponse(ctx, booking)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, principal Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, principal.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", principal.UserID.String()),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, principal.UserID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.buildBookingResponses(ctx, bookings), req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetProviderBookings(ctx context.Context, principal Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByProviderID(ctx, principal.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get provider bookings",
			zap.Error(err),
			zap.String("provider_id", principal.UserID.String()),
		)
		return nil, fmt.Errorf("get provider bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByProviderID(ctx, principal.UserID)
	if err != nil {
		s.log.Error("Failed to count provider bookings", zap.Error(err))
		return nil, fmt.Errorf("count provider bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.buildBookingResponses(ctx, bookings), req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, principal Principal, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.resolveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !CanReadBooking(principal, booking) {
		return nil, fmt.Errorf("read booking %s: %w", bookingID, ErrForbidden)
	}

	resp := s.buildBookingResponse(ctx, booking)
	return &resp, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, principal Principal, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	booking, err := s.resolveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !CanUpdateBookingStatus(principal, booking) {
		return nil, fmt.Errorf("update booking %s status: %w", bookingID, ErrForbidden)
	}

	target := entity.BookingStatus(req.Status)
	if !entity.CanTransition(booking.Status, target, principal.Role) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
	}

	updated, err := s.repo.Booking.UpdateStatus(ctx, booking.ID, target, booking.Version)
	if err != nil {
		return nil, fmt.Errorf("update booking %s status: %w", bookingID, err)
	}
	if !updated {
		// Lost to a concurrent writer; the caller may retry against the
		// new state.
		return nil, fmt.Errorf("update booking %s status: %w", bookingID, ErrConflict)
	}

	s.log.Info("Booking status updated",
		zap.String("booking_id", bookingID),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(target)),
		zap.String("actor_role", string(principal.Role)),
	)

	booking.Status = target
	booking.Version++
	resp := s.buildBookingResponse(ctx, booking)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, principal Principal, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.resolveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !CanCancelBooking(principal, booking) {
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID, ErrForbidden)
	}

	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: booking %s is already %s", ErrConflict, bookingID, booking.Status)
	}

	if !entity.CanTransition(booking.Status, entity.BookingStatusCancelled, principal.Role) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, entity.BookingStatusCancelled)
	}

	updated, err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled, booking.Version)
	if err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}
	if !updated {
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID, ErrConflict)
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("actor_role", string(principal.Role)),
	)

	booking.Status = entity.BookingStatusCancelled
	booking.Version++
	resp := s.buildBookingResponse(ctx, booking)
	return &resp, nil
}

func (s *bookingService) AddRating(ctx context.Context, principal Principal, bookingID string, req *request.AddRatingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	booking, err := s.resolveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !CanRateBooking(principal, booking) {
		return nil, fmt.Errorf("rate booking %s: %w", bookingID, ErrForbidden)
	}

	if booking.Status != entity.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: can only rate completed bookings", ErrValidation)
	}

	if booking.Rated() {
		return nil, fmt.Errorf("%w: booking %s already rated", ErrConflict, bookingID)
	}

	updated, err := s.repo.Booking.SetRating(ctx, booking.ID, req.Score, req.Review, booking.Version)
	if err != nil {
		return nil, fmt.Errorf("rate booking %s: %w", bookingID, err)
	}
	if !updated {
		return nil, fmt.Errorf("rate booking %s: %w", bookingID, ErrConflict)
	}

	// Recompute the service's aggregate synchronously so readers never see
	// a rating without its effect on the listing.
	rating, err := s.repo.Service.RecomputeRating(ctx, booking.ServiceID)
	if err != nil {
		s.log.Error("Failed to recompute service rating",
			zap.Error(err),
			zap.String("service_id", booking.ServiceID.String()),
		)
		return nil, fmt.Errorf("recompute service rating: %w", err)
	}

	s.log.Info("Booking rated",
		zap.String("booking_id", bookingID),
		zap.Int("score", req.Score),
		zap.Float64("service_average", rating.Average),
		zap.Int64("service_count", rating.Count),
	)

	now := time.Now()
	booking.RatingScore = &req.Score
	booking.RatingReview = req.Review
	booking.RatingCreatedAt = &now
	booking.Version++
	resp := s.buildBookingResponse(ctx, booking)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (s *bookingService) resolveBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
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

	return booking, nil
}

func (s *bookingService) buildBookingResponse(ctx context.Context, booking *entity.Booking) response.BookingResponse {
	return populateBooking(ctx, s.repo, booking)
}

func (s *bookingService) buildBookingResponses(ctx context.Context, bookings []*entity.Booking) []response.BookingResponse {
	responses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		responses[i] = populateBooking(ctx, s.repo, booking)
	}
	return responses
}

// populateBooking resolves the booking's references into the response
// shape; missing references degrade to bare ids.
func populateBooking(ctx context.Context, repo *repository.Repository, booking *entity.Booking) response.BookingResponse {
	customer, _ := repo.User.FindByID(ctx, booking.UserID)
	service, _ := repo.Service.FindByID(ctx, booking.ServiceID)
	provider, _ := repo.User.FindByID(ctx, booking.ProviderID)

	return response.BookingToResponse(booking, customer, service, provider)
}
