package response

import (
	"time"

	"hyperlocal-marketplace/internal/data/entity"
)

type ServiceAreaResponse struct {
	RadiusKm float64 `json:"radius_km"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type ServiceResponse struct {
	ID           string                      `json:"id"`
	Name         string                      `json:"name"`
	Description  string                      `json:"description"`
	Category     string                      `json:"category"`
	Price        float64                     `json:"price"`
	Duration     int                         `json:"duration"`
	ProviderID   string                      `json:"provider_id"`
	Provider     *UserSummary                `json:"provider,omitempty"`
	Availability []entity.AvailabilityWindow `json:"availability,omitempty"`
	ServiceArea  *ServiceAreaResponse        `json:"service_area,omitempty"`
	Rating       RatingSummary               `json:"rating"`
	IsActive     bool                        `json:"is_active"`
	Images       []string                    `json:"images,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
}

func ServiceToResponse(service *entity.Service, provider *entity.User) ServiceResponse {
	resp := ServiceResponse{
		ID:           service.ID.String(),
		Name:         service.Name,
		Description:  service.Description,
		Category:     string(service.Category),
		Price:        service.Price,
		Duration:     service.Duration,
		ProviderID:   service.ProviderID.String(),
		Provider:     UserToSummary(provider),
		Availability: service.Availability,
		Rating: RatingSummary{
			Average: service.Rating.Average,
			Count:   service.Rating.Count,
		},
		IsActive:  service.IsActive,
		Images:    service.Images,
		CreatedAt: service.CreatedAt,
	}

	if service.ServiceArea != nil {
		resp.ServiceArea = &ServiceAreaResponse{
			RadiusKm: service.ServiceArea.RadiusKm,
			Lat:      service.ServiceArea.Lat,
			Lng:      service.ServiceArea.Lng,
		}
	}

	return resp
}
