package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/padelhub/reservation-core/internal/domain"
)

type SlotRepo struct{ db *gorm.DB }

func NewSlotRepo(db *gorm.DB) *SlotRepo {
	return &SlotRepo{db: db}
}

func (r *SlotRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.CourtSlot{})
}

// LockByID locks a single slot row for update inside tx.
func (r *SlotRepo) LockByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.CourtSlot, error) {
	var s domain.CourtSlot
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SlotRepo) ByID(ctx context.Context, id int64) (*domain.CourtSlot, error) {
	var s domain.CourtSlot
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Siblings locks, in ascending-id order, every slot row sharing
// (court_id, start_time, end_time) with slot, excluding slot.ID itself. The
// ascending order is the deterministic lock order spec §5 requires to avoid
// lock-order deadlocks across concurrent creators racing the same time.
func (r *SlotRepo) Siblings(ctx context.Context, tx *gorm.DB, slot *domain.CourtSlot) ([]domain.CourtSlot, error) {
	var out []domain.CourtSlot
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("court_id = ? AND start_time = ? AND end_time = ? AND id <> ?",
			slot.CourtID, slot.StartTime, slot.EndTime, slot.ID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SlotRepo) Save(ctx context.Context, tx *gorm.DB, s *domain.CourtSlot) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Save(s).Error
}
