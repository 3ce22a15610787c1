package models

import "time"

// UserRole represents the available roles on the platform.
type UserRole string

const (
	RoleCandidate UserRole = "CANDIDATE"
	RoleTutor     UserRole = "TUTOR"
	RoleLecturer  UserRole = "LECTURER"
	RoleAdmin     UserRole = "ADMIN"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsBlocked    bool      `db:"is_blocked" json:"is_blocked"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	IsBlocked *bool
	Search    string
}
