package customer

import (
	"errors"
	"time"
)

// Customer is a converted account record, partitioned by owner.
type Customer struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OwnerID   int64     `json:"owner_id" gorm:"column:owner_id;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to customer")
)
