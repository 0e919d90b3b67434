package domain

import "time"

// Role is the acting role behind a request, resolved through the user
// directory before any cart or order call.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBranch   Role = "branch"
	RoleAdmin    Role = "admin"
)

// User is a directory record. BranchID is set only for branch-affiliated staff.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	BranchID  string    `json:"branchId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the explicit request context handed to cart, order and checkout
// services: who is calling and which branch they are acting against. There is
// no hidden global; callers construct it per request.
type Session struct {
	UserID   string
	Role     Role
	BranchID string
}

// CartReady reports whether the session can address a cart partition.
func (s Session) CartReady() bool {
	return s.UserID != "" && s.BranchID != ""
}
