package access

import (
	"context"
	"errors"
	"time"
)

// AccessRequest is the proposal/approval workflow row that produces or
// withholds a Grant.
type AccessRequest struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	RequesterID int64     `json:"requester_id" gorm:"column:requester_id;not null"`
	ReceiverID  int64     `json:"receiver_id" gorm:"column:receiver_id;not null"`
	Status      string    `json:"status" gorm:"not null;default:pending"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (AccessRequest) TableName() string {
	return "access_requests"
}

// Grant is a directed permission edge: the grantee may view records owned by
// the grantor. (grantor_id, grantee_id) pairs are unique.
type Grant struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	GrantorID int64     `json:"grantor_id" gorm:"column:grantor_id;not null;uniqueIndex:idx_grants_pair"`
	GranteeID int64     `json:"grantee_id" gorm:"column:grantee_id;not null;uniqueIndex:idx_grants_pair"`
	CreatedAt time.Time `json:"created_at"`
}

func (Grant) TableName() string {
	return "grants"
}

// PermissionFlag grants blanket read access to all owners' data. One row per
// actor; GrantedBy records the admin who toggled it last so pair-scoped
// revokes can clean it up.
type PermissionFlag struct {
	ActorID        int64     `json:"actor_id" gorm:"primaryKey;column:actor_id"`
	CanViewAllData bool      `json:"can_view_all_data" gorm:"column:can_view_all_data;not null;default:false"`
	GrantedBy      int64     `json:"granted_by" gorm:"column:granted_by"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (PermissionFlag) TableName() string {
	return "permission_flags"
}

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusRevoked  = "revoked"
)

func (r *AccessRequest) IsPending() bool {
	return r.Status == StatusPending
}

func (r *AccessRequest) CanBeRevoked() bool {
	return r.Status == StatusAccepted
}

// GrantorRole is the minimal grant projection the resolver needs: who granted
// access and what role they hold.
type GrantorRole struct {
	GrantorID int64
	Role      string
}

// GrantorProjection backs the managed-users listing: one row per actor who
// granted the caller access.
type GrantorProjection struct {
	ActorID        int64     `json:"actor_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	CanViewAllData bool      `json:"can_view_all_data"`
	GrantedAt      time.Time `json:"granted_at"`
}

// Repository defines the data access methods for requests, grants and
// permission flags. State transitions run inside store transactions so an
// accepted request is never left without its grant.
type Repository interface {
	CreateRequest(ctx context.Context, req *AccessRequest) error
	GetRequestByID(ctx context.Context, id int64) (*AccessRequest, error)
	GetPendingRequestByPair(ctx context.Context, requesterID, receiverID int64) (*AccessRequest, error)
	ListPendingForReceiver(ctx context.Context, receiverID int64) ([]*AccessRequest, error)
	ListHistoryForActor(ctx context.Context, actorID int64) ([]*AccessRequest, error)

	AcceptRequest(ctx context.Context, req *AccessRequest) error
	RejectRequest(ctx context.Context, req *AccessRequest) error
	RevokeRequest(ctx context.Context, req *AccessRequest) error

	ListGrantorRoles(ctx context.Context, granteeID int64) ([]GrantorRole, error)
	GrantorsForGrantee(ctx context.Context, granteeID int64) ([]GrantorProjection, error)
	DeleteGrantByPair(ctx context.Context, grantorID, granteeID int64) (bool, error)
	DeleteStalePendingRequests(ctx context.Context, requesterID, receiverID int64) (int64, error)
	MarkAcceptedRequestsRevoked(ctx context.Context, requesterID, receiverID int64) (int64, error)
	DeletePairPermissionFlags(ctx context.Context, grantorID, granteeID int64) (int64, error)

	GetPermissionFlag(ctx context.Context, actorID int64) (*PermissionFlag, error)
	UpsertPermissionFlag(ctx context.Context, actorID int64, enabled bool, grantedBy int64) error
}

// Domain errors
var (
	ErrSelfReference          = errors.New("requester and receiver are the same actor")
	ErrRequestNotFound        = errors.New("access request not found")
	ErrActorNotFound          = errors.New("actor not found")
	ErrGrantNotFound          = errors.New("grant not found")
	ErrInvalidStateTransition = errors.New("request state does not permit this operation")
	ErrNotParticipant         = errors.New("caller is not a participant of this request")
	ErrAdminRequired          = errors.New("admin role required")
)
