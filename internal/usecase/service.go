package usecase

import (
	"hyperlocal-marketplace/internal/data/repository"
	"hyperlocal-marketplace/internal/gateway"
	"hyperlocal-marketplace/pkg/utils"

	"go.uber.org/zap"
)

// Service bundles the use cases for wiring.
type Service struct {
	Booking BookingService
	Listing ListingService
	Payment PaymentService
	Admin   AdminService
}

func NewService(repo *repository.Repository, gw gateway.PaymentGateway, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Booking: NewBookingService(repo, log),
		Listing: NewListingService(repo, config.Search, log),
		Payment: NewPaymentService(repo, gw, config.Payment, log),
		Admin:   NewAdminService(repo, log),
	}
}
