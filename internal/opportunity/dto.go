package opportunity

import (
	"errors"
	"time"
)

type CreateOpportunityDTO struct {
	CustomerID *int64     `json:"customer_id,omitempty"`
	Title      string     `json:"title"`
	AmountIDR  int64      `json:"amount_idr"`
	Stage      string     `json:"stage"`
	CloseDate  *time.Time `json:"close_date,omitempty"`
	Notes      string     `json:"notes"`
}

func (dto CreateOpportunityDTO) Validate() error {
	if dto.Title == "" {
		return errors.New("title is required")
	}
	if dto.AmountIDR < 0 {
		return errors.New("amount cannot be negative")
	}
	if dto.Stage != "" && !ValidStage(dto.Stage) {
		return errors.New("invalid opportunity stage")
	}
	return nil
}

type UpdateOpportunityDTO struct {
	Title     *string    `json:"title,omitempty"`
	AmountIDR *int64     `json:"amount_idr,omitempty"`
	Stage     *string    `json:"stage,omitempty"`
	CloseDate *time.Time `json:"close_date,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

func (dto UpdateOpportunityDTO) Validate() error {
	if dto.Title != nil && *dto.Title == "" {
		return errors.New("title cannot be empty")
	}
	if dto.AmountIDR != nil && *dto.AmountIDR < 0 {
		return errors.New("amount cannot be negative")
	}
	if dto.Stage != nil && !ValidStage(*dto.Stage) {
		return errors.New("invalid opportunity stage")
	}
	return nil
}

func (dto UpdateOpportunityDTO) Apply(o *Opportunity) {
	if dto.Title != nil {
		o.Title = *dto.Title
	}
	if dto.AmountIDR != nil {
		o.AmountIDR = *dto.AmountIDR
	}
	if dto.Stage != nil {
		o.Stage = *dto.Stage
	}
	if dto.CloseDate != nil {
		o.CloseDate = dto.CloseDate
	}
	if dto.Notes != nil {
		o.Notes = *dto.Notes
	}
}
