package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/padelhub/reservation-core/internal/domain"
)

type ReservationRepo struct{ db *gorm.DB }

func NewReservationRepo(db *gorm.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

func (r *ReservationRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Reservation{}, &domain.Participant{})
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// used by the reservation state machine's coder collision retry (spec §4.5
// step 7, §7 taxonomy entry 2).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func (r *ReservationRepo) Create(ctx context.Context, tx *gorm.DB, res *domain.Reservation) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(res).Error
}

func (r *ReservationRepo) ByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepo) LockByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepo) Save(ctx context.Context, tx *gorm.DB, res *domain.Reservation) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Save(res).Error
}

func (r *ReservationRepo) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Delete(&domain.Reservation{}, "id = ?", id).Error
}

// CountValid counts VALID (etat=1, is_cancel=0) reservations on (slotID,
// date), with a row-level update-lock intent strong enough to prevent a
// concurrent VALID insert slipping past the check (spec §4.4 step 2).
func (r *ReservationRepo) CountValid(ctx context.Context, tx *gorm.DB, slotID int64, date time.Time) (int64, error) {
	var rows []domain.Reservation
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slot_id = ? AND date = ? AND etat = ? AND is_cancel = ?",
			slotID, date, domain.EtatValid, false).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// ListValid returns locked VALID reservations on (slotID, date) for
// cancellation fan-out (spec §4.5 cancelExcessPending, cancelValidSiblings).
func (r *ReservationRepo) ListValid(ctx context.Context, tx *gorm.DB, slotID int64, date time.Time) ([]domain.Reservation, error) {
	var rows []domain.Reservation
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slot_id = ? AND date = ? AND etat = ? AND is_cancel = ?",
			slotID, date, domain.EtatValid, false).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListPending returns locked PENDING reservations on (slotID, date) for
// cancelExcessPending (spec §4.5 step 8).
func (r *ReservationRepo) ListPending(ctx context.Context, tx *gorm.DB, slotID int64, date time.Time) ([]domain.Reservation, error) {
	var rows []domain.Reservation
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slot_id = ? AND date = ? AND etat = ? AND is_cancel = ?",
			slotID, date, domain.EtatPending, false).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// PendingOlderThan returns PENDING-score reservations whose UpdatedAt
// predates cutoff, for the Background Finalizer (spec §4.7). Also requires
// a non-empty last_score_submitter_id, so a fully-seated match nobody ever
// scored (score_status sits at its PENDING zero value by default) is never
// swept into an all-zero-sets AUTO_CONFIRMED result. limit bounds batch
// size so one finalizer tick holds locks briefly.
func (r *ReservationRepo) PendingOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]domain.Reservation, error) {
	var rows []domain.Reservation
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("score_status = ? AND updated_at < ? AND last_score_submitter_id <> ?", domain.ScorePending, cutoff, "").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

var ErrNotFound = errors.New("not_found")
