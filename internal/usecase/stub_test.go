package usecase

import (
	"context"
	"errors"
	"time"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/data/repository"
	"hyperlocal-marketplace/internal/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repository stubs. Conditional writes honor the same version
// and state guards as the SQL they stand in for.

type stubUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users[id], nil
}

func (s *stubUserRepo) FindAll(_ context.Context, role string, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range s.users {
		if role == "" || string(u.Role) == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubUserRepo) CountAll(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range s.users {
		if role == "" || string(u.Role) == role {
			n++
		}
	}
	return n, nil
}

func (s *stubUserRepo) CountByRole(ctx context.Context, role entity.UserRole) (int64, error) {
	return s.CountAll(ctx, string(role))
}

func (s *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, isActive bool) error {
	user, ok := s.users[id]
	if !ok {
		return errors.New("user not found")
	}
	user.IsActive = isActive
	return nil
}

func (s *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.users[id]; !ok {
		return errors.New("user not found")
	}
	delete(s.users, id)
	return nil
}

type stubServiceRepo struct {
	services map[uuid.UUID]*entity.Service
	bookings *stubBookingRepo
}

func (s *stubServiceRepo) Create(_ context.Context, service *entity.Service) error {
	s.services[service.ID] = service
	return nil
}

func (s *stubServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Service, error) {
	return s.services[id], nil
}

func (s *stubServiceRepo) FindActive(_ context.Context, category, search string) ([]*entity.Service, error) {
	var out []*entity.Service
	for _, svc := range s.services {
		if svc.IsActive && (category == "" || string(svc.Category) == category) {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *stubServiceRepo) FindByProviderID(_ context.Context, providerID uuid.UUID) ([]*entity.Service, error) {
	var out []*entity.Service
	for _, svc := range s.services {
		if svc.ProviderID == providerID && svc.IsActive {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *stubServiceRepo) FindAll(_ context.Context, category string, limit, offset int) ([]*entity.Service, error) {
	var out []*entity.Service
	for _, svc := range s.services {
		if category == "" || string(svc.Category) == category {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *stubServiceRepo) CountAll(_ context.Context, category string) (int64, error) {
	var n int64
	for _, svc := range s.services {
		if category == "" || string(svc.Category) == category {
			n++
		}
	}
	return n, nil
}

func (s *stubServiceRepo) Update(_ context.Context, service *entity.Service) error {
	if _, ok := s.services[service.ID]; !ok {
		return errors.New("service not found")
	}
	s.services[service.ID] = service
	return nil
}

func (s *stubServiceRepo) SetActive(_ context.Context, id uuid.UUID, isActive bool) error {
	svc, ok := s.services[id]
	if !ok {
		return errors.New("service not found")
	}
	svc.IsActive = isActive
	return nil
}

func (s *stubServiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.services[id]; !ok {
		return errors.New("service not found")
	}
	delete(s.services, id)
	return nil
}

func (s *stubServiceRepo) RecomputeRating(_ context.Context, id uuid.UUID) (entity.Rating, error) {
	svc, ok := s.services[id]
	if !ok {
		return entity.Rating{}, errors.New("service not found")
	}

	var scores []int
	for _, b := range s.bookings.bookings {
		if b.ServiceID == id && b.RatingScore != nil {
			scores = append(scores, *b.RatingScore)
		}
	}

	svc.Rating = entity.AggregateRating(scores)
	return svc.Rating, nil
}

type stubBookingRepo struct {
	bookings map[uuid.UUID]*entity.Booking

	// conflictWrites makes every conditional write report a lost race.
	conflictWrites bool
}

func (s *stubBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	s.bookings[booking.ID] = booking
	return nil
}

func (s *stubBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	// Hand out a copy so service-side mutations never leak into the store.
	copied := *b
	return &copied, nil
}

func (s *stubBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubBookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, b := range s.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *stubBookingRepo) FindByProviderID(_ context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range s.bookings {
		if b.ProviderID == providerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubBookingRepo) CountByProviderID(_ context.Context, providerID uuid.UUID) (int64, error) {
	var n int64
	for _, b := range s.bookings {
		if b.ProviderID == providerID {
			n++
		}
	}
	return n, nil
}

func (s *stubBookingRepo) FindAll(_ context.Context, status string, limit, offset int) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range s.bookings {
		if status == "" || string(b.Status) == status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubBookingRepo) CountAll(_ context.Context, status string) (int64, error) {
	var n int64
	for _, b := range s.bookings {
		if status == "" || string(b.Status) == status {
			n++
		}
	}
	return n, nil
}

func (s *stubBookingRepo) CountByServiceID(_ context.Context, serviceID uuid.UUID) (int64, error) {
	var n int64
	for _, b := range s.bookings {
		if b.ServiceID == serviceID {
			n++
		}
	}
	return n, nil
}

func (s *stubBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus, expectedVersion int64) (bool, error) {
	b, ok := s.bookings[id]
	if !ok || s.conflictWrites || b.Version != expectedVersion {
		return false, nil
	}
	b.Status = status
	b.Version++
	b.UpdatedAt = time.Now()
	return true, nil
}

func (s *stubBookingRepo) SetRating(_ context.Context, id uuid.UUID, score int, review *string, expectedVersion int64) (bool, error) {
	b, ok := s.bookings[id]
	if !ok || s.conflictWrites || b.Version != expectedVersion || b.RatingScore != nil {
		return false, nil
	}
	now := time.Now()
	b.RatingScore = &score
	b.RatingReview = review
	b.RatingCreatedAt = &now
	b.Version++
	return true, nil
}

func (s *stubBookingRepo) UpdatePayment(_ context.Context, id uuid.UUID, status entity.PaymentStatus, paymentID *string, expectedVersion int64) (bool, error) {
	b, ok := s.bookings[id]
	if !ok || s.conflictWrites || b.Version != expectedVersion {
		return false, nil
	}
	b.PaymentStatus = status
	if paymentID != nil {
		b.PaymentID = paymentID
	}
	b.Version++
	return true, nil
}

func (s *stubBookingRepo) RefundAndCancel(_ context.Context, id uuid.UUID, expectedVersion int64) (bool, error) {
	b, ok := s.bookings[id]
	if !ok || s.conflictWrites || b.Version != expectedVersion {
		return false, nil
	}
	if b.PaymentStatus != entity.PaymentStatusPaid || b.Status == entity.BookingStatusCompleted {
		return false, nil
	}
	b.PaymentStatus = entity.PaymentStatusRefunded
	b.Status = entity.BookingStatusCancelled
	b.Version++
	return true, nil
}

// fakeGateway is a deterministic payment gateway.
type fakeGateway struct {
	confirmResult bool
	confirmErr    error
	createErr     error
	refundErr     error

	refunds []string
}

func (g *fakeGateway) CreateIntent(_ context.Context, bookingID uuid.UUID, amount float64) (*gateway.Intent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &gateway.Intent{
		ID:           "pi_test_" + bookingID.String(),
		ClientSecret: "secret",
		AmountCents:  int64(amount * 100),
		Currency:     "usd",
		Status:       "requires_payment_method",
	}, nil
}

func (g *fakeGateway) Confirm(_ context.Context, intentID string) (bool, error) {
	return g.confirmResult, g.confirmErr
}

func (g *fakeGateway) Refund(_ context.Context, paymentID, reason string) error {
	if g.refundErr != nil {
		return g.refundErr
	}
	g.refunds = append(g.refunds, paymentID)
	return nil
}

// ==================== FIXTURES ====================

type fixture struct {
	repo     *repository.Repository
	users    *stubUserRepo
	services *stubServiceRepo
	bookings *stubBookingRepo

	customer uuid.UUID
	provider uuid.UUID
	admin    uuid.UUID
}

func newFixture() *fixture {
	users := &stubUserRepo{users: map[uuid.UUID]*entity.User{}}
	bookings := &stubBookingRepo{bookings: map[uuid.UUID]*entity.Booking{}}
	services := &stubServiceRepo{services: map[uuid.UUID]*entity.Service{}, bookings: bookings}

	f := &fixture{
		users:    users,
		services: services,
		bookings: bookings,
		customer: uuid.New(),
		provider: uuid.New(),
		admin:    uuid.New(),
	}

	f.repo = &repository.Repository{
		User:    users,
		Service: services,
		Booking: bookings,
	}

	users.users[f.customer] = &entity.User{
		Base: entity.Base{ID: f.customer}, Name: "Asha", Email: "asha@example.com",
		Role: entity.RoleCustomer, IsActive: true,
	}
	users.users[f.provider] = &entity.User{
		Base: entity.Base{ID: f.provider}, Name: "Ravi", Email: "ravi@example.com",
		Role: entity.RoleProvider, IsActive: true,
	}
	users.users[f.admin] = &entity.User{
		Base: entity.Base{ID: f.admin}, Name: "Root", Email: "admin@example.com",
		Role: entity.RoleAdmin, IsActive: true,
	}

	return f
}

func (f *fixture) addService(price float64) *entity.Service {
	svc := &entity.Service{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		Name:       "Pipe repair",
		Category:   entity.CategoryPlumbing,
		Price:      price,
		Duration:   60,
		ProviderID: f.provider,
		IsActive:   true,
	}
	f.services.services[svc.ID] = svc
	return svc
}

func (f *fixture) addBooking(svc *entity.Service, status entity.BookingStatus) *entity.Booking {
	b := &entity.Booking{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:        f.customer,
		ServiceID:     svc.ID,
		ProviderID:    svc.ProviderID,
		ScheduledDate: time.Now().AddDate(0, 0, 1),
		ScheduledTime: "10:00",
		Address:       "12 MG Road",
		TotalAmount:   svc.Price,
		Status:        status,
		PaymentStatus: entity.PaymentStatusRequiresMethod,
		Version:       1,
	}
	f.bookings.bookings[b.ID] = b
	return b
}

func (f *fixture) principal(role entity.UserRole) Principal {
	switch role {
	case entity.RoleProvider:
		return Principal{UserID: f.provider, Role: entity.RoleProvider}
	case entity.RoleAdmin:
		return Principal{UserID: f.admin, Role: entity.RoleAdmin}
	default:
		return Principal{UserID: f.customer, Role: entity.RoleCustomer}
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
