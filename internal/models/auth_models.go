package models

import "time"

// User roles. Exactly three capability classes exist in the system.
const (
	RoleCustomer = "customer"
	RoleRider    = "rider"
	RoleAdmin    = "admin"
)

// User represents an account: a customer requesting deliveries, a rider
// fulfilling them, or an admin operating the dashboard.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	PhoneNumber  *string   `json:"phone_number,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsValidRole reports whether the given role is one of the known capability classes.
func IsValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleRider, RoleAdmin:
		return true
	default:
		return false
	}
}

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for fields that are optional and should be NULL in DB if not provided.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
