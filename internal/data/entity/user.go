package entity

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleProvider UserRole = "provider"
	RoleAdmin    UserRole = "admin"
)

func ValidRole(role string) bool {
	switch UserRole(role) {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// User is managed by the external identity system; this service only reads
// user records to resolve booking/service references and ownership.
type User struct {
	Base
	Name     string   `db:"name"`
	Email    string   `db:"email"`
	Phone    *string  `db:"phone"`
	Role     UserRole `db:"role"`
	IsActive bool     `db:"is_active"`
}
