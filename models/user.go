package models

import "time"

// User roles.
const (
	RoleCitizen = "citizen"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// IsValidRole reports whether r is a known role.
func IsValidRole(r string) bool {
	return r == RoleCitizen || r == RoleStaff || r == RoleAdmin
}

// User is a registered account. Phone number is the primary identity.
// PasswordHash is never serialized.
type User struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email,omitempty"`
	Name        string `json:"name,omitempty"`

	PasswordHash string `json:"-"`

	IsVerified           bool       `json:"isVerified"`
	VerificationToken    string     `json:"-"`
	VerificationExpires  *time.Time `json:"-"`

	Role string `json:"role"`

	ReputationScore int `json:"reputationScore"`
	TotalReports    int `json:"totalReports"`
	ResolvedReports int `json:"resolvedReports"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IsActive  bool       `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// AuthResponse is returned on successful register/login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UserPage is one page of an admin user listing.
type UserPage struct {
	Users       []User `json:"users"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	Total       int    `json:"total"`
}
