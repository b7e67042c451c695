package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rizkypratama/crm-management/internal/actor"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var passwordHash string
	var actorID int64
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = ?`

	row := r.db.Raw(query, email, true).Row()
	if err := row.Scan(&actorID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, fmt.Errorf("user not found")
		}
		return "", 0, err
	}
	return passwordHash, actorID, nil
}

func (r *Repository) GetActorByID(ctx context.Context, id int64) (*actor.Actor, error) {
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
