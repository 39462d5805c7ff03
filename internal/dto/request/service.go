package request

type AvailabilityWindow struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

type ServiceArea struct {
	RadiusKm float64 `json:"radius_km" validate:"required,gt=0"`
	Lat      float64 `json:"lat" validate:"latitude"`
	Lng      float64 `json:"lng" validate:"longitude"`
}

type CreateServiceRequest struct {
	Name         string               `json:"name" validate:"required,max=200"`
	Description  string               `json:"description" validate:"required,max=2000"`
	Category     string               `json:"category" validate:"required,oneof=plumbing electrical beauty cleaning repair other"`
	Price        float64              `json:"price" validate:"gte=0"`
	Duration     int                  `json:"duration" validate:"required,gt=0"`
	Availability []AvailabilityWindow `json:"availability,omitempty" validate:"omitempty,dive"`
	ServiceArea  *ServiceArea         `json:"service_area,omitempty"`
	Images       []string             `json:"images,omitempty"`
}

type UpdateServiceRequest struct {
	Name         *string              `json:"name,omitempty" validate:"omitempty,max=200"`
	Description  *string              `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category     *string              `json:"category,omitempty" validate:"omitempty,oneof=plumbing electrical beauty cleaning repair other"`
	Price        *float64             `json:"price,omitempty" validate:"omitempty,gte=0"`
	Duration     *int                 `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Availability []AvailabilityWindow `json:"availability,omitempty" validate:"omitempty,dive"`
	ServiceArea  *ServiceArea         `json:"service_area,omitempty"`
	Images       []string             `json:"images,omitempty"`
	IsActive     *bool                `json:"is_active,omitempty"`
}

// SearchServicesRequest is built from query parameters; HasLocation guards
// the optional geo filter.
type SearchServicesRequest struct {
	Category string
	Search   string
	Lat      *float64
	Lng      *float64
	RadiusKm float64
}

func (r SearchServicesRequest) HasLocation() bool {
	return r.Lat != nil && r.Lng != nil
}
