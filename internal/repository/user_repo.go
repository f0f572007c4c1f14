package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/padelhub/reservation-core/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.User{}, &domain.CreditPool{})
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// LockForUpdate locks the user row for the duration of tx, satisfying the
// §5 concurrency model's "row-level update lock on the creator user" step.
func LockForUpdate(tx *gorm.DB, ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Save(ctx context.Context, tx *gorm.DB, u *domain.User) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Save(u).Error
}
