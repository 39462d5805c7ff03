package usecase

import (
	"context"
	"fmt"
	"time"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/data/repository"
	"hyperlocal-marketplace/internal/dto/request"
	"hyperlocal-marketplace/internal/dto/response"
	"hyperlocal-marketplace/pkg/geo"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ListingService interface {
	SearchServices(ctx context.Context, req *request.SearchServicesRequest) ([]response.ServiceResponse, error)
	GetServiceByID(ctx context.Context, serviceID string) (*response.ServiceResponse, error)
	GetProviderServices(ctx context.Context, providerID string) ([]response.ServiceResponse, error)
	CreateService(ctx context.Context, principal Principal, req *request.CreateServiceRequest) (*response.ServiceResponse, error)
	UpdateService(ctx context.Context, principal Principal, serviceID string, req *request.UpdateServiceRequest) (*response.ServiceResponse, error)
	DeleteService(ctx context.Context, principal Principal, serviceID string) error
}

type listingService struct {
	repo            *repository.Repository
	defaultRadiusKm float64
	log             *zap.Logger
}

func NewListingService(repo *repository.Repository, searchConfig utils.SearchConfig, log *zap.Logger) ListingService {
	return &listingService{
		repo:            repo,
		defaultRadiusKm: searchConfig.DefaultRadiusKm,
		log:             log.With(zap.String("service", "listing")),
	}
}

// SearchServices filters active listings by category and text, then by
// geographic reach when the caller sent coordinates. Listings without a
// service area are treated as serving everywhere.
func (s *listingService) SearchServices(ctx context.Context, req *request.SearchServicesRequest) ([]response.ServiceResponse, error) {
	services, err := s.repo.Service.FindActive(ctx, req.Category, req.Search)
	if err != nil {
		return nil, fmt.Errorf("search services: %w", err)
	}

	if req.HasLocation() {
		searcher := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
		radius := req.RadiusKm
		if radius <= 0 {
			radius = s.defaultRadiusKm
		}

		matched := services[:0]
		for _, service := range services {
			if geo.Match(searcher, radius, serviceArea(service)) {
				matched = append(matched, service)
			}
		}
		services = matched
	}

	responses := make([]response.ServiceResponse, len(services))
	for i, service := range services {
		provider, _ := s.repo.User.FindByID(ctx, service.ProviderID)
		responses[i] = response.ServiceToResponse(service, provider)
	}

	return responses, nil
}

func (s *listingService) GetServiceByID(ctx context.Context, serviceID string) (*response.ServiceResponse, error) {
	service, err := s.resolveService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	provider, _ := s.repo.User.FindByID(ctx, service.ProviderID)
	resp := response.ServiceToResponse(service, provider)
	return &resp, nil
}

func (s *listingService) GetProviderServices(ctx context.Context, providerID string) ([]response.ServiceResponse, error) {
	id, err := uuid.Parse(providerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid provider ID %s", ErrValidation, providerID)
	}

	services, err := s.repo.Service.FindByProviderID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get provider services: %w", err)
	}

	provider, _ := s.repo.User.FindByID(ctx, id)

	responses := make([]response.ServiceResponse, len(services))
	for i, service := range services {
		responses[i] = response.ServiceToResponse(service, provider)
	}

	return responses, nil
}

func (s *listingService) CreateService(ctx context.Context, principal Principal, req *request.CreateServiceRequest) (*response.ServiceResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create service validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	service := &entity.Service{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Description:  req.Description,
		Category:     entity.ServiceCategory(req.Category),
		Price:        req.Price,
		Duration:     req.Duration,
		ProviderID:   principal.UserID,
		Availability: availabilityFromRequest(req.Availability),
		ServiceArea:  areaFromRequest(req.ServiceArea),
		IsActive:     true,
		Images:       req.Images,
	}

	if err := s.repo.Service.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.log.Info("Service created",
		zap.String("service_id", service.ID.String()),
		zap.String("provider_id", principal.UserID.String()),
		zap.String("category", req.Category),
	)

	resp := response.ServiceToResponse(service, nil)
	return &resp, nil
}

func (s *listingService) UpdateService(ctx context.Context, principal Principal, serviceID string, req *request.UpdateServiceRequest) (*response.ServiceResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	service, err := s.resolveService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if !CanManageService(principal, service) {
		return nil, fmt.Errorf("update service %s: %w", serviceID, ErrForbidden)
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Category != nil {
		service.Category = entity.ServiceCategory(*req.Category)
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.Duration != nil {
		service.Duration = *req.Duration
	}
	if req.Availability != nil {
		service.Availability = availabilityFromRequest(req.Availability)
	}
	if req.ServiceArea != nil {
		service.ServiceArea = areaFromRequest(req.ServiceArea)
	}
	if req.Images != nil {
		service.Images = req.Images
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	service.UpdatedAt = time.Now()

	if err := s.repo.Service.Update(ctx, service); err != nil {
		return nil, fmt.Errorf("update service %s: %w", serviceID, err)
	}

	s.log.Info("Service updated", zap.String("service_id", serviceID))

	resp := response.ServiceToResponse(service, nil)
	return &resp, nil
}

// DeleteService removes a listing. Listings that already have bookings are
// deactivated instead so booking history keeps resolving.
func (s *listingService) DeleteService(ctx context.Context, principal Principal, serviceID string) error {
	service, err := s.resolveService(ctx, serviceID)
	if err != nil {
		return err
	}

	if !CanManageService(principal, service) {
		return fmt.Errorf("delete service %s: %w", serviceID, ErrForbidden)
	}

	bookingCount, err := s.repo.Booking.CountByServiceID(ctx, service.ID)
	if err != nil {
		return fmt.Errorf("count bookings for service %s: %w", serviceID, err)
	}

	if bookingCount > 0 {
		if err := s.repo.Service.SetActive(ctx, service.ID, false); err != nil {
			return fmt.Errorf("deactivate service %s: %w", serviceID, err)
		}
		s.log.Info("Service deactivated instead of deleted",
			zap.String("service_id", serviceID),
			zap.Int64("booking_count", bookingCount),
		)
		return nil
	}

	if err := s.repo.Service.Delete(ctx, service.ID); err != nil {
		return fmt.Errorf("delete service %s: %w", serviceID, err)
	}

	return nil
}

// ==================== HELPER METHODS ====================

func (s *listingService) resolveService(ctx context.Context, serviceID string) (*entity.Service, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid service ID %s", ErrValidation, serviceID)
	}

	service, err := s.repo.Service.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve service %s: %w", serviceID, err)
	}
	if service == nil {
		return nil, fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
	}

	return service, nil
}

func serviceArea(service *entity.Service) *geo.Area {
	if service.ServiceArea == nil {
		return nil
	}
	return &geo.Area{
		Center:   geo.Point{Lat: service.ServiceArea.Lat, Lng: service.ServiceArea.Lng},
		RadiusKm: service.ServiceArea.RadiusKm,
	}
}

func availabilityFromRequest(windows []request.AvailabilityWindow) []entity.AvailabilityWindow {
	if windows == nil {
		return nil
	}
	out := make([]entity.AvailabilityWindow, len(windows))
	for i, w := range windows {
		out[i] = entity.AvailabilityWindow{
			Day:       w.Day,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		}
	}
	return out
}

func areaFromRequest(area *request.ServiceArea) *entity.ServiceArea {
	if area == nil {
		return nil
	}
	return &entity.ServiceArea{
		RadiusKm: area.RadiusKm,
		Lat:      area.Lat,
		Lng:      area.Lng,
	}
}
