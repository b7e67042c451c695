package opportunity

import (
	"errors"
	"time"
)

// Opportunity is a sales deal in progress, partitioned by owner.
type Opportunity struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	OwnerID    int64      `json:"owner_id" gorm:"column:owner_id;not null;index"`
	CustomerID *int64     `json:"customer_id,omitempty" gorm:"index"`
	Title      string     `json:"title" gorm:"not null"`
	AmountIDR  int64      `json:"amount_idr" gorm:"column:amount_idr"`
	Stage      string     `json:"stage" gorm:"default:prospecting"`
	CloseDate  *time.Time `json:"close_date,omitempty"`
	Notes      string     `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

const (
	StageProspecting = "prospecting"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosedWon   = "closed_won"
	StageClosedLost  = "closed_lost"
)

func ValidStage(stage string) bool {
	switch stage {
	case StageProspecting, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrUnauthorizedAccess  = errors.New("unauthorized access to opportunity")
)
