package request

type CreatePaymentIntentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
}

type ConfirmPaymentRequest struct {
	BookingID       string `json:"booking_id" validate:"required,uuid4"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type RefundRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
