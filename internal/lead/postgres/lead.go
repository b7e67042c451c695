package postgres

import (
	"context"
	"errors"

	"github.com/rizkypratama/crm-management/internal"
	"github.com/rizkypratama/crm-management/internal/lead"
	"gorm.io/gorm"
)

// storeErr marks driver failures as retryable so the transport layer can
// answer 503 instead of a blanket 500.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return internal.NewStoreUnavailableError("lead store unavailable", err)
}

// LeadRepository implements lead.Repository using GORM.
type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) lead.Repository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	return storeErr(r.db.WithContext(ctx).Create(l).Error)
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*lead.Lead, error) {
	var l lead.Lead
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lead.ErrLeadNotFound
		}
		return nil, storeErr(err)
	}
	return &l, nil
}

func (r *LeadRepository) ListByOwners(ctx context.Context, ownerIDs []int64, limit, offset int) ([]*lead.Lead, error) {
	leads := make([]*lead.Lead, 0)
	if len(ownerIDs) == 0 {
		return leads, nil
	}
	err := r.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&leads).Error
	return leads, storeErr(err)
}

func (r *LeadRepository) ListAll(ctx context.Context, limit, offset int) ([]*lead.Lead, error) {
	leads := make([]*lead.Lead, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&leads).Error
	return leads, storeErr(err)
}

func (r *LeadRepository) Update(ctx context.Context, l *lead.Lead) error {
	return storeErr(r.db.WithContext(ctx).Save(l).Error)
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&lead.Lead{})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return lead.ErrLeadNotFound
	}
	return nil
}
