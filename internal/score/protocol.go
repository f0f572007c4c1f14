package score

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/internal/outbox"
	"github.com/padelhub/reservation-core/internal/rating"
	"github.com/padelhub/reservation-core/internal/reliability"
	"github.com/padelhub/reservation-core/internal/repository"
)

// Clock is this package's own monotonic-time collaborator (spec §6); kept
// local rather than shared with internal/reservation to avoid coupling two
// otherwise-independent components to the same interface.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type Protocol struct {
	db           *gorm.DB
	reservations *repository.ReservationRepo
	participants *repository.ParticipantRepo
	users        *repository.UserRepo
	outbox       *outbox.Outbox
	clock        Clock
}

func New(
	db *gorm.DB,
	reservations *repository.ReservationRepo,
	participants *repository.ParticipantRepo,
	users *repository.UserRepo,
	ob *outbox.Outbox,
	clock Clock,
) *Protocol {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Protocol{db: db, reservations: reservations, participants: participants, users: users, outbox: ob, clock: clock}
}

// identical compares a fresh submission against a reservation's already
// stored set fields, including derived winner (spec §4.6 step 3).
func identical(res *domain.Reservation, s Submission, teamwin int) bool {
	return res.Set1A == s.Set1.A && res.Set1B == s.Set1.B &&
		res.Set2A == s.Set2.A && res.Set2B == s.Set2.B &&
		res.Set3A == s.Set3.A && res.Set3B == s.Set3.B &&
		res.SuperTiebreak == s.SuperTiebreak && res.SetMode == s.SetMode &&
		res.Teamwin == teamwin
}

// UpdateScore runs spec §4.6's updateScore state machine. On reaching
// CONFIRMED it schedules the rating/reliability update as a detached
// background task; its failures are logged, never returned here.
func (p *Protocol) UpdateScore(ctx context.Context, reservationID int64, sub Submission, submitterID string) (*domain.Reservation, error) {
	var result *domain.Reservation

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := p.reservations.LockByID(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if res.ScoreStatus.Locked() {
			return domain.ErrScoreLocked
		}

		teamwin, err := Evaluate(sub)
		if err != nil {
			return err
		}

		newStatus := domain.ScorePending
		previousSubmitterID := res.LastScoreSubmitterID
		if res.ScoreStatus == domain.ScorePending && previousSubmitterID != "" && previousSubmitterID != submitterID {
			if identical(res, sub, teamwin) {
				newStatus = domain.ScoreConfirmed
			} else {
				newStatus = domain.ScoreConflict
			}
		}

		now := p.clock.Now()
		res.Set1A, res.Set1B = sub.Set1.A, sub.Set1.B
		res.Set2A, res.Set2B = sub.Set2.A, sub.Set2.B
		res.Set3A, res.Set3B = sub.Set3.A, sub.Set3.B
		res.SuperTiebreak = sub.SuperTiebreak
		res.SetMode = sub.SetMode
		res.Teamwin = teamwin
		res.ScoreStatus = newStatus
		res.LastScoreSubmitterID = submitterID
		res.LastScoreUpdateAt = now
		if newStatus == domain.ScoreConfirmed {
			res.ConfirmedAt = &now
		}
		if err := p.reservations.Save(ctx, tx, res); err != nil {
			return err
		}

		parts, err := p.participants.ListLocked(ctx, tx, res.ID)
		if err != nil {
			return err
		}
		notifyType := domain.NotifyScoreProposal
		title, msg := "Score submitted", "A score was submitted awaiting confirmation."
		switch newStatus {
		case domain.ScoreConfirmed:
			notifyType, title, msg = domain.NotifyScoreConfirmed, "Score confirmed", "The match score is confirmed."
		case domain.ScoreConflict:
			notifyType, title, msg = domain.NotifyScoreConflict, "Score conflict", "Submitted scores disagree; please resubmit."
		}
		for _, pt := range parts {
			if newStatus == domain.ScoreConfirmed {
				// spec scenario 6: SCORE_CONFIRMED goes to the other two, not
				// either of the two submitters who agreed on the score.
				if pt.UserID == submitterID || pt.UserID == previousSubmitterID {
					continue
				}
			} else if pt.UserID == submitterID {
				continue // the submitter already knows what they submitted
			}
			p.outbox.Enqueue(ctx, tx, outbox.Record{
				RecipientID: pt.UserID, ReservationID: res.ID, SubmitterID: submitterID,
				Type: notifyType, Title: title, Message: msg,
			})
		}

		log.Info().Int64("reservation_id", res.ID).Str("submitter_id", submitterID).
			Str("op", "update_score").Int("score_status", int(newStatus)).Msg("score submission processed")
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.ScoreStatus == domain.ScoreConfirmed || result.ScoreStatus == domain.ScoreAutoConfirmed {
		go p.updatePlayerRatings(context.Background(), result.ID)
	}
	return result, nil
}

// AutoConfirmBatch is the Background Finalizer's hook into the Score
// Protocol (spec §4.7): within one transaction it locks every reservation
// whose score_status has sat at PENDING past cutoff, flips each to
// AUTO_CONFIRMED, and after commit schedules the same rating/reliability
// background task UpdateScore would have. limit bounds batch size per tick.
func (p *Protocol) AutoConfirmBatch(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	var confirmedIDs []int64

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale, err := p.reservations.PendingOlderThan(ctx, tx, cutoff, limit)
		if err != nil {
			return err
		}
		now := p.clock.Now()
		for i := range stale {
			res := &stale[i]
			res.ScoreStatus = domain.ScoreAutoConfirmed
			res.ConfirmedAt = &now
			if err := p.reservations.Save(ctx, tx, res); err != nil {
				return err
			}
			parts, err := p.participants.ListLocked(ctx, tx, res.ID)
			if err != nil {
				return err
			}
			for _, pt := range parts {
				p.outbox.Enqueue(ctx, tx, outbox.Record{
					RecipientID: pt.UserID, ReservationID: res.ID,
					Type: domain.NotifyScoreConfirmed, Title: "Score auto-confirmed",
					Message: "Your submitted score was automatically confirmed after 24 hours.",
				})
			}
			confirmedIDs = append(confirmedIDs, res.ID)
			log.Info().Int64("reservation_id", res.ID).Str("op", "auto_confirm").Msg("score auto-confirmed by finalizer")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range confirmedIDs {
		go p.updatePlayerRatings(context.Background(), id)
	}
	return len(confirmedIDs), nil
}

// updatePlayerRatings is spec §4.6 step 6's asynchronous task, extended per
// the expanded spec to also update reliability. It runs in its own
// transaction per player and must never propagate failure to the caller.
func (p *Protocol) updatePlayerRatings(ctx context.Context, reservationID int64) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("reservation_id", reservationID).
				Msg("rating update task panicked, recovered")
		}
	}()

	res, err := p.reservations.ByID(ctx, reservationID)
	if err != nil {
		log.Warn().Err(err).Int64("reservation_id", reservationID).Msg("rating update: reservation load failed")
		return
	}

	parts, err := p.participants.List(ctx, reservationID)
	if err != nil {
		log.Warn().Err(err).Int64("reservation_id", reservationID).Msg("rating update: participant load failed")
		return
	}
	byTeam := map[int]*domain.Participant{}
	for i := range parts {
		byTeam[parts[i].Team] = &parts[i]
	}
	if byTeam[0] == nil || byTeam[1] == nil || byTeam[2] == nil || byTeam[3] == nil {
		log.Warn().Int64("reservation_id", reservationID).Msg("rating update: incomplete team assignment, aborting")
		return
	}

	users := map[int]*domain.User{}
	for team, pt := range byTeam {
		u, err := p.users.ByID(ctx, pt.UserID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", pt.UserID).Msg("rating update: user load failed")
			return
		}
		users[team] = u
	}

	pointsA := res.Set1A + res.Set2A + res.Set3A
	pointsB := res.Set1B + res.Set2B + res.Set3B

	teamARatingSum := users[0].Rating + users[1].Rating
	teamBRatingSum := users[2].Rating + users[3].Rating

	p.updateTeamMember(ctx, users[0], users[1].Rating, users[2].Rating, users[3].Rating,
		users[1].Reliability(), users[2].Reliability(), users[3].Reliability(), pointsA,
		teamARatingSum, teamBRatingSum, res.Teamwin == 1)
	p.updateTeamMember(ctx, users[1], users[0].Rating, users[2].Rating, users[3].Rating,
		users[0].Reliability(), users[2].Reliability(), users[3].Reliability(), pointsA,
		teamARatingSum, teamBRatingSum, res.Teamwin == 1)
	p.updateTeamMember(ctx, users[2], users[3].Rating, users[0].Rating, users[1].Rating,
		users[3].Reliability(), users[0].Reliability(), users[1].Reliability(), pointsB,
		teamBRatingSum, teamARatingSum, res.Teamwin == 2)
	p.updateTeamMember(ctx, users[3], users[2].Rating, users[0].Rating, users[1].Rating,
		users[2].Reliability(), users[0].Reliability(), users[1].Reliability(), pointsB,
		teamBRatingSum, teamARatingSum, res.Teamwin == 2)

	log.Info().Int64("reservation_id", reservationID).Msg("rating update task completed")
}

// updateTeamMember runs the Rating Engine and, per the expanded spec, the
// Reliability Engine for one player, each persisted in its own short
// transaction (spec §5).
func (p *Protocol) updateTeamMember(
	ctx context.Context, user *domain.User,
	teammateRating, opp1Rating, opp2Rating float64,
	teammateRel, opp1Rel, opp2Rel float64,
	pointsScored int,
	ownTeamRatingSum, otherTeamRatingSum float64,
	won bool,
) {
	ratingResult, err := rating.Calculate(rating.Input{
		PlayerRating: user.Rating, TeammateRating: teammateRating,
		Opponent1: opp1Rating, Opponent2: opp2Rating, PointsScored: pointsScored,
		TeammateReliability: teammateRel, Opponent1Reliability: opp1Rel, Opponent2Reliability: opp2Rel,
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("rating update: engine rejected input")
		return
	}

	var relResult reliability.Result
	if won {
		relResult = reliability.Calculate(reliability.Input{
			WinnerRatingSum: ownTeamRatingSum, LoserRatingSum: otherTeamRatingSum,
			CurrentReliability: user.Reliability(),
			TeammateReliability: teammateRel, Opponent1Reliability: opp1Rel, Opponent2Reliability: opp2Rel,
		})
	} else {
		relResult = reliability.Calculate(reliability.Input{
			WinnerRatingSum: otherTeamRatingSum, LoserRatingSum: ownTeamRatingSum,
			CurrentReliability: user.Reliability(),
			TeammateReliability: teammateRel, Opponent1Reliability: opp1Rel, Opponent2Reliability: opp2Rel,
		})
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := repository.LockForUpdate(tx, ctx, user.ID)
		if err != nil {
			return err
		}
		locked.Rating = ratingResult.NewRating
		locked.ReliabilityPct = int(relResult.NewReliability*100 + 0.5)
		return p.users.Save(ctx, tx, locked)
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("rating update: persist failed")
		return
	}
	log.Debug().Str("user_id", user.ID).Float64("new_rating", ratingResult.NewRating).
		Int("new_reliability_pct", int(relResult.NewReliability*100+0.5)).Msg("player rating updated")
}
