package wire

import (
	"hyperlocal-marketplace/internal/adaptor"
	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/pkg/middleware"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/admin", func(r chi.Router) {
		// Require both authentication AND admin role
		r.Use(middleware.AuthJWT(config.JWT.Secret, log))
		r.Use(middleware.RequireRoles(log, entity.RoleAdmin))

		// GET /api/admin/dashboard - Platform stats and recent bookings
		r.Get("/dashboard", adminHandler.GetDashboard)

		// GET /api/admin/users - List accounts (optional role filter)
		r.Get("/users", adminHandler.ListUsers)

		// PUT /api/admin/users/{id}/status - Activate or deactivate an account
		r.Put("/users/{id}/status", adminHandler.SetUserStatus)

		// DELETE /api/admin/users/{id} - Remove a non-admin account
		r.Delete("/users/{id}", adminHandler.DeleteUser)

		// GET /api/admin/services - List all listings (optional category filter)
		r.Get("/services", adminHandler.ListServices)

		// PUT /api/admin/services/{id}/status - Toggle listing visibility
		r.Put("/services/{id}/status", adminHandler.SetServiceStatus)

		// GET /api/admin/bookings - List all bookings (optional status filter)
		r.Get("/bookings", adminHandler.ListBookings)
	})
}
