// Package finalizer implements the Background Finalizer (spec §4.7): a
// periodically-run sweep that promotes reservations stuck in a PENDING
// score past the confirmation window to AUTO_CONFIRMED. The scheduling
// shape (gocron, a named job with a component-scoped logger, panic
// recovery via an event listener) is grounded on
// Pickleicious's internal/scheduler package.
package finalizer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/padelhub/reservation-core/internal/score"
)

const (
	// pendingScoreTimeout is the 24h threshold named in spec §4.7.
	pendingScoreTimeout = 24 * time.Hour
	// batchSize bounds how many stale reservations one tick locks, keeping
	// any single transaction's lock hold time short (spec §5).
	batchSize = 100
)

// Finalizer wraps a gocron scheduler running the periodic sweep against the
// Score Protocol.
type Finalizer struct {
	scheduler gocron.Scheduler
	scores    *score.Protocol
	clock     score.Clock
}

func New(scores *score.Protocol, clock score.Clock) (*Finalizer, error) {
	if clock == nil {
		clock = score.SystemClock{}
	}
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error().Str("job_id", jobID.String()).Str("job_name", jobName).
						Interface("panic", recoverData).Msg("finalizer job panicked")
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("finalizer: create scheduler: %w", err)
	}
	return &Finalizer{scheduler: sched, scores: scores, clock: clock}, nil
}

// Register wires the sweep to run every 15 minutes, matching the cadence
// the teacher uses for its own periodic reservation job.
func (f *Finalizer) Register() error {
	const jobName = "score_auto_confirm"
	const cronExpr = "*/15 * * * *"
	jobLogger := log.With().Str("component", jobName).Str("cron", cronExpr).Logger()

	_, err := f.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			ctx = jobLogger.WithContext(ctx)

			cutoff := f.clock.Now().Add(-pendingScoreTimeout)
			total := 0
			for {
				n, err := f.scores.AutoConfirmBatch(ctx, cutoff, batchSize)
				if err != nil {
					jobLogger.Error().Err(err).Msg("auto-confirm batch failed")
					return
				}
				total += n
				if n < batchSize {
					break
				}
			}
			if total > 0 {
				jobLogger.Info().Int("count", total).Msg("auto-confirmed stale pending scores")
			}
		}),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeWait),
	)
	if err != nil {
		return fmt.Errorf("finalizer: register job: %w", err)
	}
	jobLogger.Info().Msg("finalizer job registered")
	return nil
}

func (f *Finalizer) Start() { f.scheduler.Start() }

func (f *Finalizer) Stop() error { return f.scheduler.Shutdown() }
