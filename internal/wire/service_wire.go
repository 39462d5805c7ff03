package wire

import (
	"hyperlocal-marketplace/internal/adaptor"
	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/pkg/middleware"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireService(
	r chi.Router,
	serviceHandler *adaptor.ServiceHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/services - Search listings (category, text, geo filters)
	r.Get("/api/services", serviceHandler.SearchServices)

	// GET /api/services/{id} - Listing details
	r.Get("/api/services/{id}", serviceHandler.GetServiceByID)

	// GET /api/services/provider/{providerId} - Active listings of a provider
	r.Get("/api/services/provider/{providerId}", serviceHandler.GetProviderServices)

	// ==================== PROVIDER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(config.JWT.Secret, log))
		r.Use(middleware.RequireRoles(log, entity.RoleProvider, entity.RoleAdmin))

		// POST /api/services - Create listing
		r.Post("/api/services", serviceHandler.CreateService)

		// PUT /api/services/{id} - Update listing (owner or admin)
		r.Put("/api/services/{id}", serviceHandler.UpdateService)

		// DELETE /api/services/{id} - Delete listing (owner or admin)
		r.Delete("/api/services/{id}", serviceHandler.DeleteService)
	})
}
