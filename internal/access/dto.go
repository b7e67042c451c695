package access

import (
	"errors"
	"time"
)

// SendRequestDTO is the payload for requesting access to another actor's data.
type SendRequestDTO struct {
	ReceiverID int64 `json:"receiver_id"`
}

func (dto SendRequestDTO) Validate() error {
	if dto.ReceiverID <= 0 {
		return errors.New("receiver_id is required")
	}
	return nil
}

// RespondDTO carries the receiver's decision on a pending request.
type RespondDTO struct {
	Status string `json:"status"`
}

func (dto RespondDTO) Validate() error {
	if dto.Status == "" {
		return errors.New("status is required")
	}
	if dto.Status != StatusAccepted && dto.Status != StatusRejected {
		return errors.New("status must be either 'accepted' or 'rejected'")
	}
	return nil
}

// RevokeDTO identifies the grant to revoke, either by request id or by the
// raw (grantor, grantee) pair when no traceable request exists.
type RevokeDTO struct {
	RequestID *int64 `json:"request_id,omitempty"`
	GrantorID int64  `json:"grantor_id,omitempty"`
	GranteeID int64  `json:"grantee_id,omitempty"`
}

func (dto RevokeDTO) Validate() error {
	if dto.RequestID != nil {
		if *dto.RequestID <= 0 {
			return errors.New("request_id must be positive")
		}
		return nil
	}
	if dto.GrantorID <= 0 || dto.GranteeID <= 0 {
		return errors.New("either request_id or both grantor_id and grantee_id are required")
	}
	if dto.GrantorID == dto.GranteeID {
		return errors.New("grantor_id and grantee_id must differ")
	}
	return nil
}

// UpdatePermissionDTO toggles the blanket view-all-data flag for an actor.
type UpdatePermissionDTO struct {
	CanViewAllData bool `json:"can_view_all_data"`
}

// UpdatePermissionResponse surfaces the derived role label after a toggle.
type UpdatePermissionResponse struct {
	ActorID        int64  `json:"actor_id"`
	CanViewAllData bool   `json:"can_view_all_data"`
	NewRole        string `json:"new_role"`
}

// ManagedUserDTO is one row of the managed-users listing: an actor who
// granted the caller access.
type ManagedUserDTO struct {
	ActorID        int64     `json:"actor_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	CanViewAllData bool      `json:"can_view_all_data"`
	GrantedAt      time.Time `json:"granted_at"`
}
