package lead

import (
	"errors"
	"time"
)

// Lead is a prospective customer record, partitioned by the actor that
// created it.
type Lead struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OwnerID   int64     `json:"owner_id" gorm:"column:owner_id;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Source    string    `json:"source"`
	Status    string    `json:"status" gorm:"default:new"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to lead")
)
