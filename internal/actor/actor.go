package actor

import (
	"errors"
	"time"
)

// Actor is an authenticated identity. Role is immutable by this package;
// the blanket-view permission never rewrites it (the elevated label callers
// see is derived, see EffectiveRole).
type Actor struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Role         string    `json:"role" gorm:"not null;default:standard"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Actor) TableName() string {
	return "users"
}

const (
	RoleAdmin    = "admin"
	RoleStandard = "standard"

	// RoleManager is the display label for a standard actor holding the
	// blanket can-view-all-data permission. It is never persisted to the
	// role column.
	RoleManager = "manager"
)

func (a *Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// EffectiveRole derives the role label surfaced to clients from the stored
// role and the blanket-view permission flag.
func EffectiveRole(role string, canViewAllData bool) string {
	if role == RoleAdmin {
		return RoleAdmin
	}
	if canViewAllData {
		return RoleManager
	}
	return RoleStandard
}

var (
	ErrNotFound = errors.New("actor not found")
)
