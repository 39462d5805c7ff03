package usecase

import (
	"context"
	"testing"
	"time"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingSnapshotsPrice(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	bookingSrv := NewBookingService(f.repo, testLogger())

	resp, err := bookingSrv.CreateBooking(context.Background(), f.principal(entity.RoleCustomer), &request.CreateBookingRequest{
		ServiceID:     svc.ID.String(),
		ScheduledDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		ScheduledTime: "10:00",
		Address:       "12 MG Road",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, 100.0, resp.TotalAmount)
	assert.Equal(t, entity.BookingStatusPending, resp.Status)
	assert.Equal(t, entity.PaymentStatusRequiresMethod, resp.PaymentStatus)

	// A later price change must not touch the stored booking.
	svc.Price = 250

	id := uuid.MustParse(resp.ID)
	stored, err := f.bookings.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 100.0, stored.TotalAmount)
	assert.Equal(t, int64(1), stored.Version)
	assert.Equal(t, f.provider, stored.ProviderID)
}

func TestCreateBookingUnknownService(t *testing.T) {
	f := newFixture()
	bookingSrv := NewBookingService(f.repo, testLogger())

	_, err := bookingSrv.CreateBooking(context.Background(), f.principal(entity.RoleCustomer), &request.CreateBookingRequest{
		ServiceID:     uuid.New().String(),
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:00",
		Address:       "12 MG Road",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingInactiveService(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	svc.IsActive = false
	bookingSrv := NewBookingService(f.repo, testLogger())

	_, err := bookingSrv.CreateBooking(context.Background(), f.principal(entity.RoleCustomer), &request.CreateBookingRequest{
		ServiceID:     svc.ID.String(),
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:00",
		Address:       "12 MG Road",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	bookingSrv := NewBookingService(f.repo, testLogger())

	resp, err := bookingSrv.UpdateStatus(context.Background(), f.principal(entity.RoleProvider), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)

	stored := f.bookings.bookings[booking.ID]
	assert.Equal(t, entity.BookingStatusConfirmed, stored.Status)
	assert.Equal(t, int64(2), stored.Version)
}

func TestUpdateStatusInvalidEdge(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	bookingSrv := NewBookingService(f.repo, testLogger())

	// pending -> completed skips the machine entirely.
	_, err := bookingSrv.UpdateStatus(context.Background(), f.principal(entity.RoleProvider), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// The edge exists but not for the provider.
	booking.Status = entity.BookingStatusConfirmed
	_, err = bookingSrv.UpdateStatus(context.Background(), f.principal(entity.RoleProvider), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusForeignProviderForbidden(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	bookingSrv := NewBookingService(f.repo, testLogger())

	other := Principal{UserID: uuid.New(), Role: entity.RoleProvider}
	_, err := bookingSrv.UpdateStatus(context.Background(), other, booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStatusLostRaceIsConflict(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	f.bookings.conflictWrites = true
	bookingSrv := NewBookingService(f.repo, testLogger())

	_, err := bookingSrv.UpdateStatus(context.Background(), f.principal(entity.RoleProvider), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusConfirmed)
	bookingSrv := NewBookingService(f.repo, testLogger())

	resp, err := bookingSrv.CancelBooking(context.Background(), f.principal(entity.RoleCustomer), booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)
}

func TestCancelTerminalBookingIsConflict(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	bookingSrv := NewBookingService(f.repo, testLogger())

	for _, status := range []entity.BookingStatus{entity.BookingStatusCompleted, entity.BookingStatusCancelled} {
		booking := f.addBooking(svc, status)
		_, err := bookingSrv.CancelBooking(context.Background(), f.principal(entity.RoleCustomer), booking.ID.String())
		assert.ErrorIs(t, err, ErrConflict, "cancel of %s booking", status)
	}
}

func TestCancelInProgressIsAdminOnly(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusInProgress)
	bookingSrv := NewBookingService(f.repo, testLogger())

	_, err := bookingSrv.CancelBooking(context.Background(), f.principal(entity.RoleCustomer), booking.ID.String())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resp, err := bookingSrv.CancelBooking(context.Background(), f.principal(entity.RoleAdmin), booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)
}

func TestCancelForeignBookingForbidden(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	bookingSrv := NewBookingService(f.repo, testLogger())

	other := Principal{UserID: uuid.New(), Role: entity.RoleCustomer}
	_, err := bookingSrv.CancelBooking(context.Background(), other, booking.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAddRatingUpdatesServiceAggregate(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	bookingSrv := NewBookingService(f.repo, testLogger())

	first := f.addBooking(svc, entity.BookingStatusCompleted)
	second := f.addBooking(svc, entity.BookingStatusCompleted)

	review := "solid work"
	resp, err := bookingSrv.AddRating(context.Background(), f.principal(entity.RoleCustomer), first.ID.String(),
		&request.AddRatingRequest{Score: 5, Review: &review})
	require.NoError(t, err)
	require.NotNil(t, resp.Rating)
	assert.Equal(t, 5, resp.Rating.Score)

	assert.Equal(t, 5.0, svc.Rating.Average)
	assert.Equal(t, int64(1), svc.Rating.Count)

	_, err = bookingSrv.AddRating(context.Background(), f.principal(entity.RoleCustomer), second.ID.String(),
		&request.AddRatingRequest{Score: 4})
	require.NoError(t, err)

	assert.Equal(t, 4.5, svc.Rating.Average)
	assert.Equal(t, int64(2), svc.Rating.Count)
}

func TestAddRatingTwiceIsConflict(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusCompleted)
	bookingSrv := NewBookingService(f.repo, testLogger())

	_, err := bookingSrv.AddRating(context.Background(), f.principal(entity.RoleCustomer), booking.ID.String(),
		&request.AddRatingRequest{Score: 5})
	require.NoError(t, err)

	_, err = bookingSrv.AddRating(context.Background(), f.principal(entity.RoleCustomer), booking.ID.String(),
		&request.AddRatingRequest{Score: 1})
	assert.ErrorIs(t, err, ErrConflict)

	// The first rating survives.
	stored := f.bookings.bookings[booking.ID]
	require.NotNil(t, stored.RatingScore)
	assert.Equal(t, 5, *stored.RatingScore)
}

func TestAddRatingRequiresCompletion(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	bookingSrv := NewBookingService(f.repo, testLogger())

	for _, status := range []entity.BookingStatus{
		entity.BookingStatusPending, entity.BookingStatusConfirmed,
		entity.BookingStatusInProgress, entity.BookingStatusCancelled,
	} {
		booking := f.addBooking(svc, status)
		_, err := bookingSrv.AddRating(context.Background(), f.principal(entity.RoleCustomer), booking.ID.String(),
			&request.AddRatingRequest{Score: 5})
		assert.ErrorIs(t, err, ErrValidation, "rating a %s booking", status)
	}
}

func TestAddRatingOnlyByCustomer(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusCompleted)
	bookingSrv := NewBookingService(f.repo, testLogger())

	_, err := bookingSrv.AddRating(context.Background(), f.principal(entity.RoleProvider), booking.ID.String(),
		&request.AddRatingRequest{Score: 5})
	assert.ErrorIs(t, err, ErrForbidden)

	// Even the admin cannot rate on the customer's behalf.
	_, err = bookingSrv.AddRating(context.Background(), f.principal(entity.RoleAdmin), booking.ID.String(),
		&request.AddRatingRequest{Score: 5})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAddRatingScoreBounds(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusCompleted)
	bookingSrv := NewBookingService(f.repo, testLogger())

	for _, score := range []int{0, 6, -1} {
		_, err := bookingSrv.AddRating(context.Background(), f.principal(entity.RoleCustomer), booking.ID.String(),
			&request.AddRatingRequest{Score: score})
		assert.ErrorIs(t, err, ErrValidation, "score %d", score)
	}
}

func TestGetBookingByIDAccess(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	bookingSrv := NewBookingService(f.repo, testLogger())

	// Unknown id resolves before the access check, so a stranger probing a
	// random id learns nothing from the status code.
	stranger := Principal{UserID: uuid.New(), Role: entity.RoleCustomer}
	_, err := bookingSrv.GetBookingByID(context.Background(), stranger, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = bookingSrv.GetBookingByID(context.Background(), stranger, booking.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)

	for _, role := range []entity.UserRole{entity.RoleCustomer, entity.RoleProvider, entity.RoleAdmin} {
		resp, err := bookingSrv.GetBookingByID(context.Background(), f.principal(role), booking.ID.String())
		require.NoError(t, err, "role %s", role)
		assert.Equal(t, booking.ID.String(), resp.ID)
	}
}

func TestGetBookingByIDMalformedID(t *testing.T) {
	f := newFixture()
	bookingSrv := NewBookingService(f.repo, testLogger())

	_, err := bookingSrv.GetBookingByID(context.Background(), f.principal(entity.RoleCustomer), "not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)
}
