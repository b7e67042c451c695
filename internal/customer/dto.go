package customer

import "errors"

type CreateCustomerDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (dto CreateCustomerDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 200 {
		return errors.New("name must be less than 200 characters")
	}
	return nil
}

type UpdateCustomerDTO struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func (dto UpdateCustomerDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	return nil
}

func (dto UpdateCustomerDTO) Apply(c *Customer) {
	if dto.Name != nil {
		c.Name = *dto.Name
	}
	if dto.Email != nil {
		c.Email = *dto.Email
	}
	if dto.Phone != nil {
		c.Phone = *dto.Phone
	}
	if dto.Company != nil {
		c.Company = *dto.Company
	}
	if dto.Address != nil {
		c.Address = *dto.Address
	}
	if dto.Notes != nil {
		c.Notes = *dto.Notes
	}
}
