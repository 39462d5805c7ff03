package entity

import (
	"math"

	"github.com/google/uuid"
)

type ServiceCategory string

const (
	CategoryPlumbing   ServiceCategory = "plumbing"
	CategoryElectrical ServiceCategory = "electrical"
	CategoryBeauty     ServiceCategory = "beauty"
	CategoryCleaning   ServiceCategory = "cleaning"
	CategoryRepair     ServiceCategory = "repair"
	CategoryOther      ServiceCategory = "other"
)

func ValidCategory(category string) bool {
	switch ServiceCategory(category) {
	case CategoryPlumbing, CategoryElectrical, CategoryBeauty,
		CategoryCleaning, CategoryRepair, CategoryOther:
		return true
	}
	return false
}

// AvailabilityWindow is a weekly recurring slot the provider offers the
// service in. Times use the "15:04" 24h format.
type AvailabilityWindow struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ServiceArea is the circular coverage region a service is offered within.
// A service without an area is offered everywhere.
type ServiceArea struct {
	RadiusKm float64 `db:"area_radius_km"`
	Lat      float64 `db:"area_lat"`
	Lng      float64 `db:"area_lng"`
}

// Rating is the aggregate over all rated bookings of a service. It is only
// ever written by recomputation, never edited directly.
type Rating struct {
	Average float64 `db:"rating_average"`
	Count   int64   `db:"rating_count"`
}

// AggregateRating summarizes rating scores into an average rounded to one
// decimal place (half rounds up) and a count. An empty set yields the zero
// Rating.
func AggregateRating(scores []int) Rating {
	if len(scores) == 0 {
		return Rating{}
	}

	sum := 0
	for _, score := range scores {
		sum += score
	}

	avg := float64(sum) / float64(len(scores))
	return Rating{
		Average: math.Round(avg*10) / 10,
		Count:   int64(len(scores)),
	}
}

type Service struct {
	Base
	Name         string               `db:"name"`
	Description  string               `db:"description"`
	Category     ServiceCategory      `db:"category"`
	Price        float64              `db:"price"`
	Duration     int                  `db:"duration"` // minutes
	ProviderID   uuid.UUID            `db:"provider_id"`
	Availability []AvailabilityWindow `db:"availability"`
	ServiceArea  *ServiceArea
	Rating       Rating
	IsActive     bool     `db:"is_active"`
	Images       []string `db:"images"`
}
