package usecase

import (
	"context"
	"errors"
	"testing"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/dto/request"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentService(f *fixture, gw *fakeGateway) PaymentService {
	return NewPaymentService(f.repo, gw, utils.PaymentConfig{TimeoutSeconds: 5}, testLogger())
}

func TestCreateIntent(t *testing.T) {
	f := newFixture()
	svc := f.addService(149.5)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	paySrv := newPaymentService(f, &fakeGateway{})

	resp, err := paySrv.CreateIntent(context.Background(), f.principal(entity.RoleCustomer),
		&request.CreatePaymentIntentRequest{BookingID: booking.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, int64(14950), resp.AmountCents)
	assert.NotEmpty(t, resp.ID)
	assert.NotEmpty(t, resp.ClientSecret)
}

func TestCreateIntentAlreadyPaid(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusConfirmed)
	booking.PaymentStatus = entity.PaymentStatusPaid
	paySrv := newPaymentService(f, &fakeGateway{})

	_, err := paySrv.CreateIntent(context.Background(), f.principal(entity.RoleCustomer),
		&request.CreatePaymentIntentRequest{BookingID: booking.ID.String()})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateIntentNotOwner(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	paySrv := newPaymentService(f, &fakeGateway{})

	stranger := Principal{UserID: uuid.New(), Role: entity.RoleCustomer}
	_, err := paySrv.CreateIntent(context.Background(), stranger,
		&request.CreatePaymentIntentRequest{BookingID: booking.ID.String()})
	assert.ErrorIs(t, err, ErrForbidden)

	// The provider does not pay either.
	_, err = paySrv.CreateIntent(context.Background(), f.principal(entity.RoleProvider),
		&request.CreatePaymentIntentRequest{BookingID: booking.ID.String()})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirmPaymentSuccess(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	paySrv := newPaymentService(f, &fakeGateway{confirmResult: true})

	resp, err := paySrv.ConfirmPayment(context.Background(), f.principal(entity.RoleCustomer),
		&request.ConfirmPaymentRequest{BookingID: booking.ID.String(), PaymentIntentID: "pi_test_1"})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentStatusPaid, resp.PaymentStatus)

	stored := f.bookings.bookings[booking.ID]
	assert.Equal(t, entity.PaymentStatusPaid, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, "pi_test_1", *stored.PaymentID)
	assert.Equal(t, int64(2), stored.Version)
}

func TestConfirmPaymentDeclined(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	paySrv := newPaymentService(f, &fakeGateway{confirmResult: false})

	_, err := paySrv.ConfirmPayment(context.Background(), f.principal(entity.RoleCustomer),
		&request.ConfirmPaymentRequest{BookingID: booking.ID.String(), PaymentIntentID: "pi_test_1"})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// The decline is recorded; the charge can be retried.
	stored := f.bookings.bookings[booking.ID]
	assert.Equal(t, entity.PaymentStatusFailed, stored.PaymentStatus)
	assert.Equal(t, entity.BookingStatusPending, stored.Status)
}

func TestConfirmPaymentRetryAfterDecline(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	booking.PaymentStatus = entity.PaymentStatusFailed
	paySrv := newPaymentService(f, &fakeGateway{confirmResult: true})

	resp, err := paySrv.ConfirmPayment(context.Background(), f.principal(entity.RoleCustomer),
		&request.ConfirmPaymentRequest{BookingID: booking.ID.String(), PaymentIntentID: "pi_test_2"})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, resp.PaymentStatus)
}

func TestConfirmPaymentGatewayFailure(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusPending)
	paySrv := newPaymentService(f, &fakeGateway{confirmErr: errors.New("connection reset")})

	_, err := paySrv.ConfirmPayment(context.Background(), f.principal(entity.RoleCustomer),
		&request.ConfirmPaymentRequest{BookingID: booking.ID.String(), PaymentIntentID: "pi_test_1"})
	assert.ErrorIs(t, err, ErrPaymentGateway)

	// Gateway failures leave the booking untouched.
	stored := f.bookings.bookings[booking.ID]
	assert.Equal(t, entity.PaymentStatusRequiresMethod, stored.PaymentStatus)
	assert.Equal(t, int64(1), stored.Version)
}

func TestRefundCancelsBooking(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusConfirmed)
	booking.PaymentStatus = entity.PaymentStatusPaid
	paymentID := "pi_test_1"
	booking.PaymentID = &paymentID

	gw := &fakeGateway{}
	paySrv := newPaymentService(f, gw)

	resp, err := paySrv.Refund(context.Background(), f.principal(entity.RoleCustomer),
		&request.RefundRequest{BookingID: booking.ID.String(), Reason: "provider unavailable"})
	require.NoError(t, err)

	// Refund and cancellation land together.
	assert.Equal(t, entity.PaymentStatusRefunded, resp.PaymentStatus)
	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)

	stored := f.bookings.bookings[booking.ID]
	assert.Equal(t, entity.PaymentStatusRefunded, stored.PaymentStatus)
	assert.Equal(t, entity.BookingStatusCancelled, stored.Status)

	require.Len(t, gw.refunds, 1)
	assert.Equal(t, "pi_test_1", gw.refunds[0])
}

func TestRefundUnpaidIsConflict(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusConfirmed)
	paySrv := newPaymentService(f, &fakeGateway{})

	_, err := paySrv.Refund(context.Background(), f.principal(entity.RoleCustomer),
		&request.RefundRequest{BookingID: booking.ID.String()})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRefundCompletedIsConflict(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusCompleted)
	booking.PaymentStatus = entity.PaymentStatusPaid

	gw := &fakeGateway{}
	paySrv := newPaymentService(f, gw)

	_, err := paySrv.Refund(context.Background(), f.principal(entity.RoleCustomer),
		&request.RefundRequest{BookingID: booking.ID.String()})
	assert.ErrorIs(t, err, ErrConflict)

	// The gateway was never called.
	assert.Empty(t, gw.refunds)
}

func TestGetPaymentStatus(t *testing.T) {
	f := newFixture()
	svc := f.addService(100)
	booking := f.addBooking(svc, entity.BookingStatusConfirmed)
	paySrv := newPaymentService(f, &fakeGateway{})

	resp, err := paySrv.GetPaymentStatus(context.Background(), f.principal(entity.RoleProvider), booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, booking.ID.String(), resp.BookingID)
	assert.Equal(t, entity.PaymentStatusRequiresMethod, resp.PaymentStatus)

	stranger := Principal{UserID: uuid.New(), Role: entity.RoleCustomer}
	_, err = paySrv.GetPaymentStatus(context.Background(), stranger, booking.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)
}
