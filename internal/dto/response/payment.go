package response

import (
	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/gateway"
)

type PaymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

type PaymentStatusResponse struct {
	BookingID     string                 `json:"booking_id"`
	Service       *BookingServiceSummary `json:"service,omitempty"`
	TotalAmount   float64                `json:"total_amount"`
	PaymentStatus entity.PaymentStatus   `json:"payment_status"`
	PaymentID     *string                `json:"payment_id,omitempty"`
	Status        entity.BookingStatus   `json:"status"`
}

func IntentToResponse(intent *gateway.Intent) PaymentIntentResponse {
	return PaymentIntentResponse{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  intent.AmountCents,
		Currency:     intent.Currency,
		Status:       intent.Status,
	}
}
