package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/rizkypratama/crm-management/internal/access"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessRepository implements the access.Repository interface using GORM.
// State transitions use compare-and-swap updates inside transactions so a
// request can leave the pending state exactly once even under concurrent
// responders.
type AccessRepository struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) access.Repository {
	return &AccessRepository{db: db}
}

func (r *AccessRepository) CreateRequest(ctx context.Context, req *access.AccessRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *AccessRepository) GetRequestByID(ctx context.Context, id int64) (*access.AccessRequest, error) {
	var req access.AccessRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *AccessRepository) GetPendingRequestByPair(ctx context.Context, requesterID, receiverID int64) (*access.AccessRequest, error) {
	var req access.AccessRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND receiver_id = ? AND status = ?", requesterID, receiverID, access.StatusPending).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *AccessRepository) ListPendingForReceiver(ctx context.Context, receiverID int64) ([]*access.AccessRequest, error) {
	var requests []*access.AccessRequest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, access.StatusPending).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *AccessRepository) ListHistoryForActor(ctx context.Context, actorID int64) ([]*access.AccessRequest, error) {
	var requests []*access.AccessRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ? OR receiver_id = ?", actorID, actorID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// AcceptRequest flips the request to accepted and creates the grant in one
// transaction. The grant upsert is idempotent on the (grantor, grantee) pair.
func (r *AccessRepository) AcceptRequest(ctx context.Context, req *access.AccessRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&access.AccessRequest{}).
			Where("id = ? AND status = ?", req.ID, access.StatusPending).
			Updates(map[string]interface{}{
				"status":     access.StatusAccepted,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return access.ErrInvalidStateTransition
		}

		grant := &access.Grant{
			GrantorID: req.ReceiverID,
			GranteeID: req.RequesterID,
			CreatedAt: time.Now(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "grantor_id"}, {Name: "grantee_id"}},
			DoNothing: true,
		}).Create(grant).Error
	})
}

func (r *AccessRepository) RejectRequest(ctx context.Context, req *access.AccessRequest) error {
	res := r.db.WithContext(ctx).Model(&access.AccessRequest{}).
		Where("id = ? AND status = ?", req.ID, access.StatusPending).
		Updates(map[string]interface{}{
			"status":     access.StatusRejected,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return access.ErrInvalidStateTransition
	}
	return nil
}

// RevokeRequest flips an accepted request to revoked and removes its grant in
// one transaction. A request that is already revoked is a no-op success.
func (r *AccessRepository) RevokeRequest(ctx context.Context, req *access.AccessRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&access.AccessRequest{}).
			Where("id = ? AND status = ?", req.ID, access.StatusAccepted).
			Updates(map[string]interface{}{
				"status":     access.StatusRevoked,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current access.AccessRequest
			if err := tx.Where("id = ?", req.ID).First(&current).Error; err != nil {
				return err
			}
			if current.Status == access.StatusRevoked {
				return nil
			}
			return access.ErrInvalidStateTransition
		}

		return tx.Where("grantor_id = ? AND grantee_id = ?", req.ReceiverID, req.RequesterID).
			Delete(&access.Grant{}).Error
	})
}

func (r *AccessRepository) ListGrantorRoles(ctx context.Context, granteeID int64) ([]access.GrantorRole, error) {
	var grantors []access.GrantorRole
	err := r.db.WithContext(ctx).Raw(`
		SELECT g.grantor_id, u.role
		FROM grants g
		JOIN users u ON u.id = g.grantor_id
		WHERE g.grantee_id = ?`, granteeID).
		Scan(&grantors).Error
	return grantors, err
}

func (r *AccessRepository) GrantorsForGrantee(ctx context.Context, granteeID int64) ([]access.GrantorProjection, error) {
	var grantors []access.GrantorProjection
	err := r.db.WithContext(ctx).Raw(`
		SELECT g.grantor_id AS actor_id,
		       u.email,
		       u.name,
		       u.role,
		       COALESCE(pf.can_view_all_data, false) AS can_view_all_data,
		       g.created_at AS granted_at
		FROM grants g
		JOIN users u ON u.id = g.grantor_id
		LEFT JOIN permission_flags pf ON pf.actor_id = g.grantor_id
		WHERE g.grantee_id = ?
		ORDER BY g.created_at DESC`, granteeID).
		Scan(&grantors).Error
	return grantors, err
}

func (r *AccessRepository) DeleteGrantByPair(ctx context.Context, grantorID, granteeID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("grantor_id = ? AND grantee_id = ?", grantorID, granteeID).
		Delete(&access.Grant{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AccessRepository) DeleteStalePendingRequests(ctx context.Context, requesterID, receiverID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("requester_id = ? AND receiver_id = ? AND status = ?", requesterID, receiverID, access.StatusPending).
		Delete(&access.AccessRequest{})
	return res.RowsAffected, res.Error
}

func (r *AccessRepository) MarkAcceptedRequestsRevoked(ctx context.Context, requesterID, receiverID int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&access.AccessRequest{}).
		Where("requester_id = ? AND receiver_id = ? AND status = ?", requesterID, receiverID, access.StatusAccepted).
		Updates(map[string]interface{}{
			"status":     access.StatusRevoked,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *AccessRepository) DeletePairPermissionFlags(ctx context.Context, grantorID, granteeID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("actor_id = ? AND granted_by = ?", granteeID, grantorID).
		Delete(&access.PermissionFlag{})
	return res.RowsAffected, res.Error
}

func (r *AccessRepository) GetPermissionFlag(ctx context.Context, actorID int64) (*access.PermissionFlag, error) {
	var flag access.PermissionFlag
	err := r.db.WithContext(ctx).Where("actor_id = ?", actorID).First(&flag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &flag, nil
}

func (r *AccessRepository) UpsertPermissionFlag(ctx context.Context, actorID int64, enabled bool, grantedBy int64) error {
	flag := &access.PermissionFlag{
		ActorID:        actorID,
		CanViewAllData: enabled,
		GrantedBy:      grantedBy,
		UpdatedAt:      time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_view_all_data", "granted_by", "updated_at"}),
	}).Create(flag).Error
}
