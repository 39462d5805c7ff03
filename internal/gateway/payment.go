// Package gateway wraps the external payment processor. The core treats it
// as an unreliable collaborator: every call takes a context so the caller
// can bound it with a timeout, and failures are surfaced as errors rather
// than panics.
package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Intent is the processor-side handle for a pending payment.
type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string
}

// PaymentGateway is the collaborator interface the payment service depends
// on. Tests substitute a deterministic fake.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, bookingID uuid.UUID, amount float64) (*Intent, error)
	// Confirm returns whether the charge succeeded. A false result is a
	// decline, not an error; errors mean the gateway itself failed.
	Confirm(ctx context.Context, intentID string) (bool, error)
	Refund(ctx context.Context, paymentID, reason string) error
}

// MockGateway simulates a payment processor: confirms succeed with a
// configurable probability and refunds always succeed. A real integration
// would replace the random outcome with the gateway's actual result and
// pass an idempotency token on retries.
type MockGateway struct {
	successRate float64
	mu          sync.Mutex
	rnd         *rand.Rand
	log         *zap.Logger
}

func NewMockGateway(successRate float64, log *zap.Logger) *MockGateway {
	if successRate < 0 || successRate > 1 {
		successRate = 0.9
	}
	return &MockGateway{
		successRate: successRate,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		log:         log.With(zap.String("gateway", "payment-mock")),
	}
}

func (g *MockGateway) CreateIntent(ctx context.Context, bookingID uuid.UUID, amount float64) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("create intent: %w", err)
	}

	intentID := fmt.Sprintf("pi_mock_%s", uuid.New().String())
	intent := &Intent{
		ID:           intentID,
		ClientSecret: fmt.Sprintf("%s_secret_%s", intentID, uuid.New().String()[:8]),
		AmountCents:  int64(amount * 100),
		Currency:     "usd",
		Status:       "requires_payment_method",
	}

	g.log.Debug("Payment intent created",
		zap.String("intent_id", intent.ID),
		zap.String("booking_id", bookingID.String()),
		zap.Int64("amount_cents", intent.AmountCents),
	)

	return intent, nil
}

func (g *MockGateway) Confirm(ctx context.Context, intentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("confirm payment: %w", err)
	}

	g.mu.Lock()
	success := g.rnd.Float64() < g.successRate
	g.mu.Unlock()

	g.log.Debug("Payment confirm simulated",
		zap.String("intent_id", intentID),
		zap.Bool("success", success),
	)

	return success, nil
}

func (g *MockGateway) Refund(ctx context.Context, paymentID, reason string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("refund payment: %w", err)
	}

	g.log.Debug("Refund simulated",
		zap.String("payment_id", paymentID),
		zap.String("reason", reason),
	)

	return nil
}
