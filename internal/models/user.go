package models

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleCameraman Role = "Cameraman"
)

// User - the active kiosk identity. Advisory only, not a trust boundary.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// StoredUser - registry entry kept under the photoBoothUsers key.
// Password is stored as typed; login is a plain equality check.
type StoredUser struct {
	User
	Password string `json:"password"`
}

func NewUser(name, email string, role Role, now time.Time) User {
	return User{
		ID:    fmt.Sprintf("user_%d", now.UnixMilli()),
		Name:  name,
		Email: email,
		Role:  role,
	}
}
