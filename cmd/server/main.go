package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/padelhub/reservation-core/internal/capacity"
	"github.com/padelhub/reservation-core/internal/finalizer"
	"github.com/padelhub/reservation-core/internal/httpapi"
	"github.com/padelhub/reservation-core/internal/ledger"
	"github.com/padelhub/reservation-core/internal/outbox"
	"github.com/padelhub/reservation-core/internal/repository"
	"github.com/padelhub/reservation-core/internal/reservation"
	"github.com/padelhub/reservation-core/internal/score"
	"github.com/padelhub/reservation-core/pkg/auth"
	"github.com/padelhub/reservation-core/pkg/config"
	"github.com/padelhub/reservation-core/pkg/db"
	"github.com/padelhub/reservation-core/pkg/obs"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer := must(obs.InitTracer(ctx, cfg.ServiceName, cfg.Environment, cfg.OTLPEndpoint))
	defer shutdownTracer(context.Background())

	gdb := must(db.Open(cfg.PostgresDSN))

	users := repository.NewUserRepo(gdb)
	slots := repository.NewSlotRepo(gdb)
	reservations := repository.NewReservationRepo(gdb)
	participants := repository.NewParticipantRepo(gdb)
	ledgerRepo := repository.NewLedgerRepo(gdb)
	outboxRepo := repository.NewOutboxRepo(gdb)
	for _, m := range []interface{ Migrate() error }{users, slots, reservations, participants, ledgerRepo, outboxRepo} {
		must(0, m.Migrate())
	}

	led := ledger.New(users, ledgerRepo)
	arbiter := capacity.New(slots, reservations)
	ob := outbox.New(outboxRepo)

	machine := reservation.New(gdb, users, slots, reservations, participants, led, arbiter, ob, nil)
	protocol := score.New(gdb, reservations, participants, users, ob, nil)

	fin := must(finalizer.New(protocol, nil))
	if err := fin.Register(); err != nil {
		log.Fatal(err)
	}
	fin.Start()
	defer fin.Stop()

	verifier := auth.NewVerifier(cfg.JWTSecret)
	router := httpapi.NewRouter(verifier, machine, protocol)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Println("[reservation-core] listening on", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("[reservation-core] graceful shutdown failed:", err)
	}
	log.Println("[reservation-core] stopped")
}
