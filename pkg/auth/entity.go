package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role is one of the two fixed access levels.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is a domain entity representing a system user.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// PublicUser is the projection of User returned by every read path.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Identity is what a verified session token proves about its bearer.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
