package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/rizkypratama/crm-management/internal"
	"github.com/rizkypratama/crm-management/internal/communication"
	"gorm.io/gorm"
)

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return internal.NewStoreUnavailableError("communication store unavailable", err)
}

// CommunicationRepository implements communication.Repository using GORM.
type CommunicationRepository struct {
	db *gorm.DB
}

func NewCommunicationRepository(db *gorm.DB) communication.Repository {
	return &CommunicationRepository{db: db}
}

func (r *CommunicationRepository) Create(ctx context.Context, c *communication.Communication) error {
	return storeErr(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CommunicationRepository) GetByID(ctx context.Context, id int64) (*communication.Communication, error) {
	var c communication.Communication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, communication.ErrCommunicationNotFound
		}
		return nil, storeErr(err)
	}
	return &c, nil
}

func (r *CommunicationRepository) GetByExternalID(ctx context.Context, externalID string) (*communication.Communication, error) {
	var c communication.Communication
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, communication.ErrCommunicationNotFound
		}
		return nil, storeErr(err)
	}
	return &c, nil
}

func (r *CommunicationRepository) ListByOwners(ctx context.Context, ownerIDs []int64, limit, offset int) ([]*communication.Communication, error) {
	communications := make([]*communication.Communication, 0)
	if len(ownerIDs) == 0 {
		return communications, nil
	}
	err := r.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&communications).Error
	return communications, storeErr(err)
}

func (r *CommunicationRepository) ListAll(ctx context.Context, limit, offset int) ([]*communication.Communication, error) {
	communications := make([]*communication.Communication, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&communications).Error
	return communications, storeErr(err)
}

func (r *CommunicationRepository) UpdateDeliveryStatus(ctx context.Context, externalID, messageID, status string, sentAt *time.Time) error {
	updates := map[string]interface{}{
		"delivery_status": status,
		"updated_at":      time.Now(),
	}
	if messageID != "" {
		updates["message_id"] = messageID
	}
	if sentAt != nil {
		updates["sent_at"] = sentAt
	}

	res := r.db.WithContext(ctx).Model(&communication.Communication{}).
		Where("external_id = ?", externalID).
		Updates(updates)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return communication.ErrCommunicationNotFound
	}
	return nil
}

func (r *CommunicationRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&communication.Communication{})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return communication.ErrCommunicationNotFound
	}
	return nil
}
