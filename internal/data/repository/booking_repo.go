package repository

import (
	"context"
	"fmt"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindByProviderID(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByProviderID(ctx context.Context, providerID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, status string, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context, status string) (int64, error)
	CountByServiceID(ctx context.Context, serviceID uuid.UUID) (int64, error)

	// Conditional writes. Each update only applies at the expected version
	// (and any extra state guard in its WHERE clause) and bumps the
	// version; the returned bool is false when no row matched, which the
	// caller surfaces as a retryable conflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, expectedVersion int64) (bool, error)
	SetRating(ctx context.Context, id uuid.UUID, score int, review *string, expectedVersion int64) (bool, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, status entity.PaymentStatus, paymentID *string, expectedVersion int64) (bool, error)
	RefundAndCancel(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `
	id, user_id, service_id, provider_id, scheduled_date, scheduled_time,
	address, total_amount, notes, status, payment_status, payment_id,
	rating_score, rating_review, rating_created_at, version, created_at, updated_at
`

func scanBooking(row rowScanner) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ServiceID,
		&booking.ProviderID,
		&booking.ScheduledDate,
		&booking.ScheduledTime,
		&booking.Address,
		&booking.TotalAmount,
		&booking.Notes,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.PaymentID,
		&booking.RatingScore,
		&booking.RatingReview,
		&booking.RatingCreatedAt,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, service_id, provider_id, scheduled_date, scheduled_time,
		                      address, total_amount, notes, status, payment_status, version,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.ServiceID,
		booking.ProviderID,
		booking.ScheduledDate,
		booking.ScheduledTime,
		booking.Address,
		booking.TotalAmount,
		booking.Notes,
		booking.Status,
		booking.PaymentStatus,
		booking.Version,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, userID, limit, offset)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, providerID, limit, offset)
}

func (r *bookingRepository) CountByProviderID(ctx context.Context, providerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE provider_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, providerID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by provider ID",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return 0, fmt.Errorf("count bookings by provider ID %s: %w", providerID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, status string, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, status, limit, offset)
}

func (r *bookingRepository) CountAll(ctx context.Context, status string) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE ($1 = '' OR status = $1)`

	var count int64
	err := r.db.QueryRow(ctx, query, status).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err), zap.String("status", status))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) CountByServiceID(ctx context.Context, serviceID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE service_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, serviceID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by service ID",
			zap.Error(err),
			zap.String("service_id", serviceID.String()),
		)
		return 0, fmt.Errorf("count bookings by service ID %s: %w", serviceID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, expectedVersion int64) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3
	`

	result, err := r.db.Exec(ctx, query, id, status, expectedVersion)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return false, fmt.Errorf("update booking %s status to %s: %w", id.String(), string(status), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) SetRating(ctx context.Context, id uuid.UUID, score int, review *string, expectedVersion int64) (bool, error) {
	// The rating_score IS NULL guard makes the write first-wins even if two
	// raters slip past the read-side duplicate check.
	query := `
		UPDATE bookings
		SET rating_score = $2, rating_review = $3, rating_created_at = NOW(),
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $4 AND rating_score IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, score, review, expectedVersion)
	if err != nil {
		r.log.Error("Failed to set booking rating",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.Int("score", score),
		)
		return false, fmt.Errorf("set rating on booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) UpdatePayment(ctx context.Context, id uuid.UUID, status entity.PaymentStatus, paymentID *string, expectedVersion int64) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = $2, payment_id = COALESCE($3, payment_id),
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $4
	`

	result, err := r.db.Exec(ctx, query, id, status, paymentID, expectedVersion)
	if err != nil {
		r.log.Error("Failed to update booking payment status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("payment_status", string(status)),
		)
		return false, fmt.Errorf("update booking %s payment status to %s: %w", id.String(), string(status), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) RefundAndCancel(ctx context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	// Single statement so payment_status=refunded and status=cancelled are
	// never observable apart; state guards repeat the eligibility check.
	query := `
		UPDATE bookings
		SET payment_status = 'refunded', status = 'cancelled',
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		  AND payment_status = 'paid' AND status <> 'completed'
	`

	result, err := r.db.Exec(ctx, query, id, expectedVersion)
	if err != nil {
		r.log.Error("Failed to refund booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("refund booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query bookings", zap.Error(err))
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Failed to read booking rows", zap.Error(err))
		return nil, fmt.Errorf("read booking rows: %w", err)
	}

	return bookings, nil
}
