package postgres

import (
	"context"
	"errors"

	"github.com/rizkypratama/crm-management/internal"
	"github.com/rizkypratama/crm-management/internal/customer"
	"gorm.io/gorm"
)

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return internal.NewStoreUnavailableError("customer store unavailable", err)
}

// CustomerRepository implements customer.Repository using GORM.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) customer.Repository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	return storeErr(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, storeErr(err)
	}
	return &c, nil
}

func (r *CustomerRepository) ListByOwners(ctx context.Context, ownerIDs []int64, limit, offset int) ([]*customer.Customer, error) {
	customers := make([]*customer.Customer, 0)
	if len(ownerIDs) == 0 {
		return customers, nil
	}
	err := r.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&customers).Error
	return customers, storeErr(err)
}

func (r *CustomerRepository) ListAll(ctx context.Context, limit, offset int) ([]*customer.Customer, error) {
	customers := make([]*customer.Customer, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&customers).Error
	return customers, storeErr(err)
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	return storeErr(r.db.WithContext(ctx).Save(c).Error)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&customer.Customer{})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}
