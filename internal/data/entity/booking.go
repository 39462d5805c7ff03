package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in-progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

func ValidBookingStatus(status string) bool {
	switch BookingStatus(status) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further status transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusRequiresMethod PaymentStatus = "requires_payment_method"
	PaymentStatusPaid           PaymentStatus = "paid"
	PaymentStatusFailed         PaymentStatus = "failed"
	PaymentStatusRefunded       PaymentStatus = "refunded"
)

// statusTransitions is the full booking state machine as data: for each
// allowed edge, the roles permitted to request it. Any edge not present is
// an invalid transition regardless of role.
var statusTransitions = map[BookingStatus]map[BookingStatus][]UserRole{
	BookingStatusPending: {
		BookingStatusConfirmed: {RoleProvider, RoleAdmin},
		BookingStatusCancelled: {RoleProvider, RoleCustomer, RoleAdmin},
	},
	BookingStatusConfirmed: {
		BookingStatusInProgress: {RoleProvider, RoleAdmin},
		BookingStatusCancelled:  {RoleCustomer, RoleAdmin},
	},
	BookingStatusInProgress: {
		BookingStatusCompleted: {RoleProvider, RoleAdmin},
		BookingStatusCancelled: {RoleAdmin},
	},
}

// TransitionExists reports whether from -> to is an edge of the state
// machine for any role.
func TransitionExists(from, to BookingStatus) bool {
	_, ok := statusTransitions[from][to]
	return ok
}

// CanTransition reports whether the given role may move a booking from one
// status to another.
func CanTransition(from, to BookingStatus, role UserRole) bool {
	roles, ok := statusTransitions[from][to]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type Booking struct {
	Base
	UserID        uuid.UUID     `db:"user_id"`
	ServiceID     uuid.UUID     `db:"service_id"`
	ProviderID    uuid.UUID     `db:"provider_id"` // snapshot of the service's provider at creation
	ScheduledDate time.Time     `db:"scheduled_date"`
	ScheduledTime string        `db:"scheduled_time"`
	Address       string        `db:"address"`
	TotalAmount   float64       `db:"total_amount"` // price snapshot, never recomputed
	Notes         *string       `db:"notes"`
	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	PaymentID     *string       `db:"payment_id"`

	// Rating fields are set at most once, after completion.
	RatingScore     *int       `db:"rating_score"`
	RatingReview    *string    `db:"rating_review"`
	RatingCreatedAt *time.Time `db:"rating_created_at"`

	// Version guards concurrent writes; every successful mutation bumps it.
	Version int64 `db:"version"`
}

// Rated reports whether a rating has been attached to the booking.
func (b *Booking) Rated() bool {
	return b.RatingScore != nil
}
