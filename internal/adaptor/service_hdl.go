package adaptor

import (
	"encoding/json"
	"net/http"
	"strconv"

	"hyperlocal-marketplace/internal/dto/request"
	"hyperlocal-marketplace/internal/usecase"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ServiceHandler struct {
	service usecase.ListingService
	log     *zap.Logger
}

func NewServiceHandler(service usecase.ListingService, log *zap.Logger) *ServiceHandler {
	return &ServiceHandler{
		service: service,
		log:     log.With(zap.String("handler", "service")),
	}
}

// SearchServices handles GET /api/services (public)
func (h *ServiceHandler) SearchServices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &request.SearchServicesRequest{
		Category: query.Get("category"),
		Search:   query.Get("search"),
		RadiusKm: utils.ParseFloat(query.Get("radius"), 0),
	}

	// Both coordinates must be present for the geo filter to apply.
	if latStr, lngStr := query.Get("lat"), query.Get("lng"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			utils.ResponseBadRequest(w, "Invalid coordinates", nil)
			return
		}
		req.Lat = &lat
		req.Lng = &lng
	}

	services, err := h.service.SearchServices(r.Context(), req)
	if err != nil {
		handleServiceError(h.log, w, err, "search services")
		return
	}

	utils.ResponseSuccess(w, "success", services)
}

// GetServiceByID handles GET /api/services/{id} (public)
func (h *ServiceHandler) GetServiceByID(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "id")
	if serviceID == "" {
		utils.ResponseBadRequest(w, "Service ID is required", nil)
		return
	}

	service, err := h.service.GetServiceByID(r.Context(), serviceID)
	if err != nil {
		handleServiceError(h.log, w, err, "get service by ID")
		return
	}

	utils.ResponseSuccess(w, "success", service)
}

// GetProviderServices handles GET /api/services/provider/{providerId} (public)
func (h *ServiceHandler) GetProviderServices(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "providerId")
	if providerID == "" {
		utils.ResponseBadRequest(w, "Provider ID is required", nil)
		return
	}

	services, err := h.service.GetProviderServices(r.Context(), providerID)
	if err != nil {
		handleServiceError(h.log, w, err, "get provider services")
		return
	}

	utils.ResponseSuccess(w, "success", services)
}

// CreateService handles POST /api/services (provider)
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	service, err := h.service.CreateService(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create service")
		return
	}

	utils.ResponseCreated(w, "Service created", service)
}

// UpdateService handles PUT /api/services/{id} (owning provider or admin)
func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	serviceID := chi.URLParam(r, "id")
	if serviceID == "" {
		utils.ResponseBadRequest(w, "Service ID is required", nil)
		return
	}

	var req request.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	service, err := h.service.UpdateService(r.Context(), principal, serviceID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update service")
		return
	}

	utils.ResponseSuccess(w, "Service updated", service)
}

// DeleteService handles DELETE /api/services/{id} (owning provider or admin)
func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	serviceID := chi.URLParam(r, "id")
	if serviceID == "" {
		utils.ResponseBadRequest(w, "Service ID is required", nil)
		return
	}

	if err := h.service.DeleteService(r.Context(), principal, serviceID); err != nil {
		handleServiceError(h.log, w, err, "delete service")
		return
	}

	utils.ResponseSuccess(w, "Service deleted", nil)
}
