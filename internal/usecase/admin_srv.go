package usecase

import (
	"context"
	"fmt"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/data/repository"
	"hyperlocal-marketplace/internal/dto/request"
	"hyperlocal-marketplace/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminService backs the admin surface. Route middleware already requires
// the admin role; the one check kept here is that admins cannot delete
// other admins.
type AdminService interface {
	GetDashboard(ctx context.Context) (*response.DashboardResponse, error)
	ListUsers(ctx context.Context, role string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	ListServices(ctx context.Context, category string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ServiceResponse], error)
	ListBookings(ctx context.Context, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	SetServiceStatus(ctx context.Context, serviceID string, isActive bool) (*response.ServiceResponse, error)
	SetUserStatus(ctx context.Context, userID string, isActive bool) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, principal Principal, userID string) error
}

type adminService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAdminService(repo *repository.Repository, log *zap.Logger) AdminService {
	return &adminService{
		repo: repo,
		log:  log.With(zap.String("service", "admin")),
	}
}

func (s *adminService) GetDashboard(ctx context.Context) (*response.DashboardResponse, error) {
	var stats response.DashboardStats
	var err error

	if stats.TotalCustomers, err = s.repo.User.CountByRole(ctx, entity.RoleCustomer); err != nil {
		return nil, fmt.Errorf("dashboard customer count: %w", err)
	}
	if stats.TotalProviders, err = s.repo.User.CountByRole(ctx, entity.RoleProvider); err != nil {
		return nil, fmt.Errorf("dashboard provider count: %w", err)
	}
	if stats.TotalServices, err = s.repo.Service.CountAll(ctx, ""); err != nil {
		return nil, fmt.Errorf("dashboard service count: %w", err)
	}
	if stats.TotalBookings, err = s.repo.Booking.CountAll(ctx, ""); err != nil {
		return nil, fmt.Errorf("dashboard booking count: %w", err)
	}
	if stats.CompletedBookings, err = s.repo.Booking.CountAll(ctx, string(entity.BookingStatusCompleted)); err != nil {
		return nil, fmt.Errorf("dashboard completed count: %w", err)
	}
	if stats.PendingBookings, err = s.repo.Booking.CountAll(ctx, string(entity.BookingStatusPending)); err != nil {
		return nil, fmt.Errorf("dashboard pending count: %w", err)
	}

	recent, err := s.repo.Booking.FindAll(ctx, "", 5, 0)
	if err != nil {
		return nil, fmt.Errorf("dashboard recent bookings: %w", err)
	}

	recentResponses := make([]response.BookingResponse, len(recent))
	for i, booking := range recent {
		recentResponses[i] = populateBooking(ctx, s.repo, booking)
	}

	return &response.DashboardResponse{
		Stats:          stats,
		RecentBookings: recentResponses,
	}, nil
}

func (s *adminService) ListUsers(ctx context.Context, role string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	if role != "" && !entity.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %s", ErrValidation, role)
	}

	users, err := s.repo.User.FindAll(ctx, role, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := s.repo.User.CountAll(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	responses := make([]response.UserResponse, len(users))
	for i, user := range users {
		responses[i] = response.UserToResponse(user)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *adminService) ListServices(ctx context.Context, category string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ServiceResponse], error) {
	if category != "" && !entity.ValidCategory(category) {
		return nil, fmt.Errorf("%w: invalid category %s", ErrValidation, category)
	}

	services, err := s.repo.Service.FindAll(ctx, category, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	total, err := s.repo.Service.CountAll(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}

	responses := make([]response.ServiceResponse, len(services))
	for i, service := range services {
		provider, _ := s.repo.User.FindByID(ctx, service.ProviderID)
		responses[i] = response.ServiceToResponse(service, provider)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *adminService) ListBookings(ctx context.Context, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if status != "" && !entity.ValidBookingStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %s", ErrValidation, status)
	}

	bookings, err := s.repo.Booking.FindAll(ctx, status, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.repo.Booking.CountAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	responses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		responses[i] = populateBooking(ctx, s.repo, booking)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *adminService) SetServiceStatus(ctx context.Context, serviceID string, isActive bool) (*response.ServiceResponse, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid service ID %s", ErrValidation, serviceID)
	}

	service, err := s.repo.Service.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve service %s: %w", serviceID, err)
	}
	if service == nil {
		return nil, fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
	}

	if err := s.repo.Service.SetActive(ctx, id, isActive); err != nil {
		return nil, fmt.Errorf("set service %s status: %w", serviceID, err)
	}

	s.log.Info("Service status toggled",
		zap.String("service_id", serviceID),
		zap.Bool("is_active", isActive),
	)

	service.IsActive = isActive
	provider, _ := s.repo.User.FindByID(ctx, service.ProviderID)
	resp := response.ServiceToResponse(service, provider)
	return &resp, nil
}

func (s *adminService) SetUserStatus(ctx context.Context, userID string, isActive bool) (*response.UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID %s", ErrValidation, userID)
	}

	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	if err := s.repo.User.SetActive(ctx, id, isActive); err != nil {
		return nil, fmt.Errorf("set user %s status: %w", userID, err)
	}

	s.log.Info("User status toggled",
		zap.String("user_id", userID),
		zap.Bool("is_active", isActive),
	)

	user.IsActive = isActive
	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *adminService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("%w: invalid user ID %s", ErrValidation, userID)
	}

	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	if !CanDeleteUser(principal, user) {
		return fmt.Errorf("delete user %s: %w", userID, ErrForbidden)
	}

	if err := s.repo.User.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}

	s.log.Info("User deleted by admin",
		zap.String("user_id", userID),
		zap.String("admin_id", principal.UserID.String()),
	)

	return nil
}
