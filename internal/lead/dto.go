package lead

import "errors"

// CreateLeadDTO represents the request payload for creating a lead.
type CreateLeadDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Source  string `json:"source"`
	Notes   string `json:"notes"`
}

func (dto CreateLeadDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 200 {
		return errors.New("name must be less than 200 characters")
	}
	if dto.Email == "" && dto.Phone == "" {
		return errors.New("either email or phone is required")
	}
	return nil
}

// UpdateLeadDTO represents the request payload for updating a lead.
type UpdateLeadDTO struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Source  *string `json:"source,omitempty"`
	Status  *string `json:"status,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func (dto UpdateLeadDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.Status != nil && !ValidStatus(*dto.Status) {
		return errors.New("invalid lead status")
	}
	return nil
}

func (dto UpdateLeadDTO) Apply(l *Lead) {
	if dto.Name != nil {
		l.Name = *dto.Name
	}
	if dto.Email != nil {
		l.Email = *dto.Email
	}
	if dto.Phone != nil {
		l.Phone = *dto.Phone
	}
	if dto.Company != nil {
		l.Company = *dto.Company
	}
	if dto.Source != nil {
		l.Source = *dto.Source
	}
	if dto.Status != nil {
		l.Status = *dto.Status
	}
	if dto.Notes != nil {
		l.Notes = *dto.Notes
	}
}
