package domain

import "time"

// Role enumerates account roles on the platform.
type Role string

const (
	RoleDoctor   Role = "doctor"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RoleHospital, RoleAdmin:
		return true
	}
	return false
}

// Account is the authoritative record for a platform account. Status flags
// (IsActive, IsApproved) are mutated by admin flows and must be re-read on
// every authorization decision; token claims are only a snapshot of these
// fields at issuance time.
type Account struct {
	ID           int64
	Email        string
	Role         Role
	PasswordHash string
	IsActive     bool
	IsApproved   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
