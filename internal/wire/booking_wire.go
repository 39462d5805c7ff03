package wire

import (
	"hyperlocal-marketplace/internal/adaptor"
	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/pkg/middleware"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.AuthJWT(config.JWT.Secret, log))

		// POST /api/bookings - Create new booking (customers only)
		r.With(middleware.RequireRoles(log, entity.RoleCustomer)).
			Post("/", bookingHandler.CreateBooking)

		// GET /api/bookings/my-bookings - Booking history for the caller
		r.With(middleware.RequireRoles(log, entity.RoleCustomer)).
			Get("/my-bookings", bookingHandler.GetUserBookings)

		// GET /api/bookings/provider-bookings - Incoming bookings for a provider
		r.With(middleware.RequireRoles(log, entity.RoleProvider, entity.RoleAdmin)).
			Get("/provider-bookings", bookingHandler.GetProviderBookings)

		// GET /api/bookings/{id} - Booking details (participant or admin)
		r.Get("/{id}", bookingHandler.GetBookingByID)

		// PUT /api/bookings/{id}/status - Advance the booking (provider or admin)
		r.With(middleware.RequireRoles(log, entity.RoleProvider, entity.RoleAdmin)).
			Put("/{id}/status", bookingHandler.UpdateStatus)

		// PUT /api/bookings/{id}/cancel - Cancel the booking (customer or admin)
		r.With(middleware.RequireRoles(log, entity.RoleCustomer, entity.RoleAdmin)).
			Put("/{id}/cancel", bookingHandler.CancelBooking)

		// POST /api/bookings/{id}/rating - Rate a completed booking (customer)
		r.With(middleware.RequireRoles(log, entity.RoleCustomer)).
			Post("/{id}/rating", bookingHandler.AddRating)
	})
}
