package response

import (
	"time"

	"hyperlocal-marketplace/internal/data/entity"
)

type BookingRatingResponse struct {
	Score     int       `json:"score"`
	Review    *string   `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingServiceSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
}

type BookingResponse struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	User          *UserSummary           `json:"user,omitempty"`
	ServiceID     string                 `json:"service_id"`
	Service       *BookingServiceSummary `json:"service,omitempty"`
	ProviderID    string                 `json:"provider_id"`
	Provider      *UserSummary           `json:"provider,omitempty"`
	ScheduledDate string                 `json:"scheduled_date"`
	ScheduledTime string                 `json:"scheduled_time"`
	Address       string                 `json:"address"`
	TotalAmount   float64                `json:"total_amount"`
	Notes         *string                `json:"notes,omitempty"`
	Status        entity.BookingStatus   `json:"status"`
	PaymentStatus entity.PaymentStatus   `json:"payment_status"`
	PaymentID     *string                `json:"payment_id,omitempty"`
	Rating        *BookingRatingResponse `json:"rating,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// BookingToResponse builds the populated booking shape; customer, service
// and provider may be nil when a reference fails to resolve.
func BookingToResponse(booking *entity.Booking, customer *entity.User, service *entity.Service, provider *entity.User) BookingResponse {
	resp := BookingResponse{
		ID:            booking.ID.String(),
		UserID:        booking.UserID.String(),
		User:          UserToSummary(customer),
		ServiceID:     booking.ServiceID.String(),
		ProviderID:    booking.ProviderID.String(),
		Provider:      UserToSummary(provider),
		ScheduledDate: booking.ScheduledDate.Format("2006-01-02"),
		ScheduledTime: booking.ScheduledTime,
		Address:       booking.Address,
		TotalAmount:   booking.TotalAmount,
		Notes:         booking.Notes,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		PaymentID:     booking.PaymentID,
		CreatedAt:     booking.CreatedAt,
	}

	if service != nil {
		resp.Service = &BookingServiceSummary{
			ID:          service.ID.String(),
			Name:        service.Name,
			Description: service.Description,
			Price:       service.Price,
			Duration:    service.Duration,
		}
	}

	if booking.Rated() {
		resp.Rating = &BookingRatingResponse{
			Score:     *booking.RatingScore,
			Review:    booking.RatingReview,
			CreatedAt: *booking.RatingCreatedAt,
		}
	}

	return resp
}
