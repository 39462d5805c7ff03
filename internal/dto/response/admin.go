package response

type DashboardStats struct {
	TotalCustomers    int64 `json:"total_customers"`
	TotalProviders    int64 `json:"total_providers"`
	TotalServices     int64 `json:"total_services"`
	TotalBookings     int64 `json:"total_bookings"`
	CompletedBookings int64 `json:"completed_bookings"`
	PendingBookings   int64 `json:"pending_bookings"`
}

type DashboardResponse struct {
	Stats          DashboardStats    `json:"stats"`
	RecentBookings []BookingResponse `json:"recent_bookings"`
}
