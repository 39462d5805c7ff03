package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	FindActive(ctx context.Context, category, search string) ([]*entity.Service, error)
	FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.Service, error)
	FindAll(ctx context.Context, category string, limit, offset int) ([]*entity.Service, error)
	CountAll(ctx context.Context, category string) (int64, error)
	Update(ctx context.Context, service *entity.Service) error
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// RecomputeRating rebuilds the service's aggregate rating from its
	// rated bookings inside a transaction that locks the service row, so
	// concurrent recomputations for the same service serialize.
	RecomputeRating(ctx context.Context, id uuid.UUID) (entity.Rating, error)
}

type serviceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewServiceRepository(db database.PgxIface, log *zap.Logger) ServiceRepository {
	return &serviceRepository{
		db:  db,
		log: log.With(zap.String("repository", "service")),
	}
}

const serviceColumns = `
	id, name, description, category, price, duration, provider_id,
	availability, area_radius_km, area_lat, area_lng,
	rating_average, rating_count, is_active, images, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (*entity.Service, error) {
	var (
		service          entity.Service
		availabilityJSON []byte
		areaRadius       *float64
		areaLat          *float64
		areaLng          *float64
	)

	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Category,
		&service.Price,
		&service.Duration,
		&service.ProviderID,
		&availabilityJSON,
		&areaRadius,
		&areaLat,
		&areaLng,
		&service.Rating.Average,
		&service.Rating.Count,
		&service.IsActive,
		&service.Images,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(availabilityJSON) > 0 {
		if err := json.Unmarshal(availabilityJSON, &service.Availability); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
	}

	if areaRadius != nil && areaLat != nil && areaLng != nil {
		service.ServiceArea = &entity.ServiceArea{
			RadiusKm: *areaRadius,
			Lat:      *areaLat,
			Lng:      *areaLng,
		}
	}

	return &service, nil
}

func serviceAreaColumns(service *entity.Service) (radius, lat, lng *float64) {
	if service.ServiceArea == nil {
		return nil, nil, nil
	}
	return &service.ServiceArea.RadiusKm, &service.ServiceArea.Lat, &service.ServiceArea.Lng
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	query := `
		INSERT INTO services (id, name, description, category, price, duration, provider_id,
		                      availability, area_radius_km, area_lat, area_lng,
		                      rating_average, rating_count, is_active, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	availabilityJSON, err := json.Marshal(service.Availability)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}

	areaRadius, areaLat, areaLng := serviceAreaColumns(service)

	_, err = r.db.Exec(ctx, query,
		service.ID,
		service.Name,
		service.Description,
		service.Category,
		service.Price,
		service.Duration,
		service.ProviderID,
		availabilityJSON,
		areaRadius,
		areaLat,
		areaLng,
		service.Rating.Average,
		service.Rating.Count,
		service.IsActive,
		service.Images,
		service.CreatedAt,
		service.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create service",
			zap.Error(err),
			zap.String("service_id", service.ID.String()),
			zap.String("provider_id", service.ProviderID.String()),
		)
		return fmt.Errorf("create service %s: %w", service.ID.String(), err)
	}

	return nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	service, err := scanService(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find service by ID",
			zap.Error(err),
			zap.String("service_id", id.String()),
		)
		return nil, fmt.Errorf("find service by ID %s: %w", id.String(), err)
	}

	return service, nil
}

// FindActive returns active services filtered by category equality and a
// case-insensitive substring match on name/description. Geo filtering is
// not done here; the search service applies it per candidate.
func (r *serviceRepository) FindActive(ctx context.Context, category, search string) ([]*entity.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE is_active = TRUE
		  AND ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
	`

	return r.queryServices(ctx, query, category, escapeLike(search))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes ILIKE metacharacters so a search term like
// "50%" matches the literal text instead of acting as a wildcard.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *serviceRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE provider_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`

	return r.queryServices(ctx, query, providerID)
}

func (r *serviceRepository) FindAll(ctx context.Context, category string, limit, offset int) ([]*entity.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE ($1 = '' OR category = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryServices(ctx, query, category, limit, offset)
}

func (r *serviceRepository) CountAll(ctx context.Context, category string) (int64, error) {
	query := `SELECT COUNT(*) FROM services WHERE ($1 = '' OR category = $1)`

	var count int64
	err := r.db.QueryRow(ctx, query, category).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count services", zap.Error(err))
		return 0, fmt.Errorf("count services: %w", err)
	}

	return count, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	query := `
		UPDATE services
		SET name = $2, description = $3, category = $4, price = $5, duration = $6,
		    availability = $7, area_radius_km = $8, area_lat = $9, area_lng = $10,
		    is_active = $11, images = $12, updated_at = $13
		WHERE id = $1
	`

	availabilityJSON, err := json.Marshal(service.Availability)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}

	areaRadius, areaLat, areaLng := serviceAreaColumns(service)

	result, err := r.db.Exec(ctx, query,
		service.ID,
		service.Name,
		service.Description,
		service.Category,
		service.Price,
		service.Duration,
		availabilityJSON,
		areaRadius,
		areaLat,
		areaLng,
		service.IsActive,
		service.Images,
		service.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update service",
			zap.Error(err),
			zap.String("service_id", service.ID.String()),
		)
		return fmt.Errorf("update service %s: %w", service.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s not found", service.ID.String())
	}

	return nil
}

func (r *serviceRepository) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE services SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, isActive)
	if err != nil {
		r.log.Error("Failed to set service active flag",
			zap.Error(err),
			zap.String("service_id", id.String()),
			zap.Bool("is_active", isActive),
		)
		return fmt.Errorf("set service %s active flag: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s not found", id.String())
	}

	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM services WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete service",
			zap.Error(err),
			zap.String("service_id", id.String()),
		)
		return fmt.Errorf("delete service %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s not found", id.String())
	}

	r.log.Info("Service deleted", zap.String("service_id", id.String()))
	return nil
}

func (r *serviceRepository) RecomputeRating(ctx context.Context, id uuid.UUID) (entity.Rating, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return entity.Rating{}, fmt.Errorf("begin rating recompute: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the service row so concurrent recomputes for the same service
	// serialize and each one sees all ratings committed before it.
	var serviceID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM services WHERE id = $1 FOR UPDATE`, id).Scan(&serviceID)
	if err == pgx.ErrNoRows {
		return entity.Rating{}, fmt.Errorf("service %s not found", id.String())
	}
	if err != nil {
		return entity.Rating{}, fmt.Errorf("lock service %s: %w", id.String(), err)
	}

	rows, err := tx.Query(ctx,
		`SELECT rating_score FROM bookings WHERE service_id = $1 AND rating_score IS NOT NULL`, id)
	if err != nil {
		return entity.Rating{}, fmt.Errorf("collect ratings for service %s: %w", id.String(), err)
	}

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			rows.Close()
			return entity.Rating{}, fmt.Errorf("scan rating score: %w", err)
		}
		scores = append(scores, score)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return entity.Rating{}, fmt.Errorf("read rating scores: %w", err)
	}

	rating := entity.AggregateRating(scores)

	_, err = tx.Exec(ctx,
		`UPDATE services SET rating_average = $2, rating_count = $3, updated_at = NOW() WHERE id = $1`,
		id, rating.Average, rating.Count)
	if err != nil {
		return entity.Rating{}, fmt.Errorf("write rating for service %s: %w", id.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return entity.Rating{}, fmt.Errorf("commit rating recompute: %w", err)
	}

	r.log.Debug("Service rating recomputed",
		zap.String("service_id", id.String()),
		zap.Float64("average", rating.Average),
		zap.Int64("count", rating.Count),
	)

	return rating, nil
}

func (r *serviceRepository) queryServices(ctx context.Context, query string, args ...any) ([]*entity.Service, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query services", zap.Error(err))
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	var services []*entity.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			r.log.Error("Failed to scan service row", zap.Error(err))
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Failed to read service rows", zap.Error(err))
		return nil, fmt.Errorf("read service rows: %w", err)
	}

	return services, nil
}
