package request

type CreateBookingRequest struct {
	ServiceID     string  `json:"service_id" validate:"required,uuid4"`
	ScheduledDate string  `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTime string  `json:"scheduled_time" validate:"required,datetime=15:04"`
	Address       string  `json:"address" validate:"required,max=500"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed in-progress completed cancelled"`
}

type AddRatingRequest struct {
	Score  int     `json:"score" validate:"required,min=1,max=5"`
	Review *string `json:"review,omitempty" validate:"omitempty,max=1000"`
}
