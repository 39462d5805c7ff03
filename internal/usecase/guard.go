package usecase

import (
	"github.com/google/uuid"

	"hyperlocal-marketplace/internal/data/entity"
)

// Principal is the authenticated caller as extracted from the request
// token: an opaque identity plus role. Identity issuance lives outside
// this service.
type Principal struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == entity.RoleAdmin
}

// The access guard: thin role/ownership predicates consumed before every
// mutating operation. Admin bypasses ownership except the one hard-coded
// exception (an admin may not delete another admin).

// CanReadBooking allows the booking's customer, its provider, or an admin.
func CanReadBooking(p Principal, booking *entity.Booking) bool {
	return p.IsAdmin() || booking.UserID == p.UserID || booking.ProviderID == p.UserID
}

// OwnsBookingAsCustomer reports whether the principal is the booking's
// customer.
func OwnsBookingAsCustomer(p Principal, booking *entity.Booking) bool {
	return p.Role == entity.RoleCustomer && booking.UserID == p.UserID
}

// OwnsBookingAsProvider reports whether the principal is the booking's
// provider.
func OwnsBookingAsProvider(p Principal, booking *entity.Booking) bool {
	return p.Role == entity.RoleProvider && booking.ProviderID == p.UserID
}

// CanUpdateBookingStatus allows the owning provider or an admin.
func CanUpdateBookingStatus(p Principal, booking *entity.Booking) bool {
	return p.IsAdmin() || OwnsBookingAsProvider(p, booking)
}

// CanCancelBooking allows the owning customer or an admin.
func CanCancelBooking(p Principal, booking *entity.Booking) bool {
	return p.IsAdmin() || OwnsBookingAsCustomer(p, booking)
}

// CanRateBooking allows only the owning customer.
func CanRateBooking(p Principal, booking *entity.Booking) bool {
	return OwnsBookingAsCustomer(p, booking)
}

// CanRefundBooking allows the owning customer or an admin.
func CanRefundBooking(p Principal, booking *entity.Booking) bool {
	return p.IsAdmin() || OwnsBookingAsCustomer(p, booking)
}

// CanManageService allows the owning provider or an admin.
func CanManageService(p Principal, service *entity.Service) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == entity.RoleProvider && service.ProviderID == p.UserID
}

// CanDeleteUser allows an admin to delete any account except another
// admin's.
func CanDeleteUser(p Principal, target *entity.User) bool {
	return p.IsAdmin() && target.Role != entity.RoleAdmin
}
