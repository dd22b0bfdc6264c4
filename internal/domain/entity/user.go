package entity

import "time"

// Roles known to the API. Refunds, adjustments, settings writes and fiscal
// retries require admin or manager.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// User is a cashier or back-office operator. Credentials live in the external
// identity provider; this row only backs lookups such as cashier_name.
type User struct {
	ID        string
	Username  string
	FullName  string
	Role      string
	CreatedAt time.Time
}
