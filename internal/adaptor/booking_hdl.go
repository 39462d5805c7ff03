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

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (customer)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// GetUserBookings handles GET /api/bookings/my-bookings (customer)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	req := paginationFromQuery(r)

	bookings, err := h.service.GetUserBookings(r.Context(), principal, req)
	if err != nil {
		handleServiceError(h.log, w, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetProviderBookings handles GET /api/bookings/provider-bookings (provider or admin)
func (h *BookingHandler) GetProviderBookings(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	req := paginationFromQuery(r)

	bookings, err := h.service.GetProviderBookings(r.Context(), principal, req)
	if err != nil {
		handleServiceError(h.log, w, err, "get provider bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBookingByID handles GET /api/bookings/{id} (participant or admin)
func (h *BookingHandler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	booking, err := h.service.GetBookingByID(r.Context(), principal, bookingID)
	if err != nil {
		handleServiceError(h.log, w, err, "get booking by ID")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// UpdateStatus handles PUT /api/bookings/{id}/status (provider or admin)
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), principal, bookingID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, "Booking status updated", booking)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel (customer or admin)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), principal, bookingID)
	if err != nil {
		handleServiceError(h.log, w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}

// AddRating handles POST /api/bookings/{id}/rating (customer)
func (h *BookingHandler) AddRating(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.AddRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.AddRating(r.Context(), principal, bookingID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "add rating")
		return
	}

	utils.ResponseCreated(w, "Rating added", booking)
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
