package postgres

import (
	"context"
	"errors"

	"github.com/rizkypratama/crm-management/internal/actor"
	"gorm.io/gorm"
)

// ActorRepository implements the actor.Repository interface using GORM.
type ActorRepository struct {
	db *gorm.DB
}

func NewActorRepository(db *gorm.DB) actor.Repository {
	return &ActorRepository{db: db}
}

func (r *ActorRepository) GetByID(ctx context.Context, id int64) (*actor.Actor, error) {
	var a actor.Actor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, actor.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ActorRepository) GetByEmail(ctx context.Context, email string) (*actor.Actor, error) {
	var a actor.Actor
	err := r.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, actor.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ActorRepository) ListActive(ctx context.Context) ([]*actor.Actor, error) {
	var actors []*actor.Actor
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("email ASC").
		Find(&actors).Error
	return actors, err
}

func (r *ActorRepository) ListAllIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&actor.Actor{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
