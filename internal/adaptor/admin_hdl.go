package adaptor

import (
	"encoding/json"
	"net/http"

	"hyperlocal-marketplace/internal/usecase"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	service usecase.AdminService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log.With(zap.String("handler", "admin")),
	}
}

// GetDashboard handles GET /api/admin/dashboard (admin only)
func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.GetDashboard(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "get dashboard")
		return
	}

	utils.ResponseSuccess(w, "success", dashboard)
}

// ListUsers handles GET /api/admin/users (admin only)
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), r.URL.Query().Get("role"), paginationFromQuery(r))
	if err != nil {
		handleServiceError(h.log, w, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "success", users)
}

// ListServices handles GET /api/admin/services (admin only)
func (h *AdminHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context(), r.URL.Query().Get("category"), paginationFromQuery(r))
	if err != nil {
		handleServiceError(h.log, w, err, "list services")
		return
	}

	utils.ResponseSuccess(w, "success", services)
}

// ListBookings handles GET /api/admin/bookings (admin only)
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context(), r.URL.Query().Get("status"), paginationFromQuery(r))
	if err != nil {
		handleServiceError(h.log, w, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// SetServiceStatus handles PUT /api/admin/services/{id}/status (admin only)
func (h *AdminHandler) SetServiceStatus(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "id")
	if serviceID == "" {
		utils.ResponseBadRequest(w, "Service ID is required", nil)
		return
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		utils.ResponseBadRequest(w, "is_active is required", nil)
		return
	}

	service, err := h.service.SetServiceStatus(r.Context(), serviceID, *req.IsActive)
	if err != nil {
		handleServiceError(h.log, w, err, "set service status")
		return
	}

	utils.ResponseSuccess(w, "Service status updated", service)
}

// SetUserStatus handles PUT /api/admin/users/{id}/status (admin only)
func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		utils.ResponseBadRequest(w, "User ID is required", nil)
		return
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		utils.ResponseBadRequest(w, "is_active is required", nil)
		return
	}

	user, err := h.service.SetUserStatus(r.Context(), userID, *req.IsActive)
	if err != nil {
		handleServiceError(h.log, w, err, "set user status")
		return
	}

	utils.ResponseSuccess(w, "User status updated", user)
}

// DeleteUser handles DELETE /api/admin/users/{id} (admin only)
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	userID := chi.URLParam(r, "id")
	if userID == "" {
		utils.ResponseBadRequest(w, "User ID is required", nil)
		return
	}

	if err := h.service.DeleteUser(r.Context(), principal, userID); err != nil {
		handleServiceError(h.log, w, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted", nil)
}
