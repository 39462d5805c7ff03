package adaptor

import (
	"hyperlocal-marketplace/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Booking *BookingHandler
	Service *ServiceHandler
	Payment *PaymentHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Booking, log),
		Service: NewServiceHandler(service.Listing, log),
		Payment: NewPaymentHandler(service.Payment, log),
		Admin:   NewAdminHandler(service.Admin, log),
	}
}
