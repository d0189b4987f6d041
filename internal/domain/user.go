package domain

import "time"

// Role is the authorization role carried by a user record and its token.
type Role string

// RoleClient is assigned to every record created through the public API.
const RoleClient Role = "client"

// User is a user record. Password is never serialized.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	BirthDate string    `json:"birthdate"`
	Phone     string    `json:"phone"`
	Password  string    `json:"-"`
	Status    bool      `json:"status"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the record is visible to normal queries.
func (u *User) IsActive() bool {
	return u.Status
}

// ProfilePatch holds the only fields that may change after creation.
type ProfilePatch struct {
	FirstName string
	LastName  string
	Phone     string
}

// AuthenticatedUser is the public projection of a user plus the issued token.
type AuthenticatedUser struct {
	User
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
