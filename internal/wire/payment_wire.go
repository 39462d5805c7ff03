package wire

import (
	"hyperlocal-marketplace/internal/adaptor"
	"hyperlocal-marketplace/pkg/middleware"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/payment", func(r chi.Router) {
		r.Use(middleware.AuthJWT(config.JWT.Secret, log))

		// POST /api/payment/create-payment-intent - Start payment for a booking
		r.Post("/create-payment-intent", paymentHandler.CreatePaymentIntent)

		// POST /api/payment/confirm-payment - Settle a payment intent
		r.Post("/confirm-payment", paymentHandler.ConfirmPayment)

		// POST /api/payment/refund - Refund a paid booking (cancels it too)
		r.Post("/refund", paymentHandler.Refund)

		// GET /api/payment/payment-status/{bookingId} - Payment state of a booking
		r.Get("/payment-status/{bookingId}", paymentHandler.GetPaymentStatus)
	})
}
