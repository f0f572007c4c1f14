package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
)

type OutboxRepo struct{ db *gorm.DB }

func NewOutboxRepo(db *gorm.DB) *OutboxRepo {
	return &OutboxRepo{db: db}
}

func (r *OutboxRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Notification{})
}

// Insert writes the outbox row inside the caller's transaction, never a
// separate connection (spec §9's outbox design note).
func (r *OutboxRepo) Insert(ctx context.Context, tx *gorm.DB, n *domain.Notification) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(n).Error
}

func (r *OutboxRepo) Undelivered(ctx context.Context, limit int) ([]domain.Notification, error) {
	var rows []domain.Notification
	err := r.db.WithContext(ctx).
		Where("delivered = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *OutboxRepo) MarkDelivered(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("delivered", true).Error
}
