package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/padelhub/reservation-core/internal/domain"
)

type ParticipantRepo struct{ db *gorm.DB }

func NewParticipantRepo(db *gorm.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

func (r *ParticipantRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Participant{})
}

func (r *ParticipantRepo) Create(ctx context.Context, tx *gorm.DB, p *domain.Participant) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(p).Error
}

// ListLocked returns every participant of a reservation, locked for update,
// matching spec §4.5's "lock ... all participant rows" requirement.
func (r *ParticipantRepo) ListLocked(ctx context.Context, tx *gorm.DB, reservationID int64) ([]domain.Participant, error) {
	var rows []domain.Participant
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reservation_id = ?", reservationID).
		Order("team ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ParticipantRepo) List(ctx context.Context, reservationID int64) ([]domain.Participant, error) {
	var rows []domain.Participant
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("team ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ParticipantRepo) Delete(ctx context.Context, tx *gorm.DB, reservationID int64, userID string) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).
		Delete(&domain.Participant{}, "reservation_id = ? AND user_id = ?", reservationID, userID).Error
}

// DeleteAll cascades the destruction of every participant of a reservation
// (spec §3: "reservations exclusively own participants, cascade-destroyed on
// hard cancellation").
func (r *ParticipantRepo) DeleteAll(ctx context.Context, tx *gorm.DB, reservationID int64) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).
		Delete(&domain.Participant{}, "reservation_id = ?", reservationID).Error
}
