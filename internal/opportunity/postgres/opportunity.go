package postgres

import (
	"context"
	"errors"

	"github.com/rizkypratama/crm-management/internal"
	"github.com/rizkypratama/crm-management/internal/opportunity"
	"gorm.io/gorm"
)

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return internal.NewStoreUnavailableError("opportunity store unavailable", err)
}

// OpportunityRepository implements opportunity.Repository using GORM.
type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) opportunity.Repository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) Create(ctx context.Context, o *opportunity.Opportunity) error {
	return storeErr(r.db.WithContext(ctx).Create(o).Error)
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*opportunity.Opportunity, error) {
	var o opportunity.Opportunity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, opportunity.ErrOpportunityNotFound
		}
		return nil, storeErr(err)
	}
	return &o, nil
}

func (r *OpportunityRepository) ListByOwners(ctx context.Context, ownerIDs []int64, limit, offset int) ([]*opportunity.Opportunity, error) {
	opportunities := make([]*opportunity.Opportunity, 0)
	if len(ownerIDs) == 0 {
		return opportunities, nil
	}
	err := r.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&opportunities).Error
	return opportunities, storeErr(err)
}

func (r *OpportunityRepository) ListAll(ctx context.Context, limit, offset int) ([]*opportunity.Opportunity, error) {
	opportunities := make([]*opportunity.Opportunity, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&opportunities).Error
	return opportunities, storeErr(err)
}

func (r *OpportunityRepository) Update(ctx context.Context, o *opportunity.Opportunity) error {
	return storeErr(r.db.WithContext(ctx).Save(o).Error)
}

func (r *OpportunityRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&opportunity.Opportunity{})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return opportunity.ErrOpportunityNotFound
	}
	return nil
}
