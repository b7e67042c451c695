package actor

// AvailableUserDTO is the directory listing shape returned by GetAvailableUsers.
type AvailableUserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// CurrentUserDTO is the /users/me response. EffectiveRole reflects the
// blanket-view permission on top of the stored role.
type CurrentUserDTO struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	EffectiveRole  string `json:"effective_role"`
	CanViewAllData bool   `json:"can_view_all_data"`
}

func ToAvailableUserDTO(a *Actor) AvailableUserDTO {
	return AvailableUserDTO{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  a.Role,
	}
}
