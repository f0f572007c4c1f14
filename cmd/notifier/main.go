package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/padelhub/reservation-core/internal/notifier"
	"github.com/padelhub/reservation-core/internal/outbox"
	"github.com/padelhub/reservation-core/internal/repository"
	"github.com/padelhub/reservation-core/pkg/config"
	"github.com/padelhub/reservation-core/pkg/db"
	"github.com/padelhub/reservation-core/pkg/mq"
)

const (
	pollInterval = 2 * time.Second
	batchSize    = 50
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

// main polls the outbox on a fixed interval and publishes undelivered
// notifications, mirroring the notification-service's long-running
// consumer loop but pull- rather than push-driven (spec §4.8's "consumed
// by a worker task").
func main() {
	cfg := must(config.Load())

	gdb := must(db.Open(cfg.PostgresDSN))
	outboxRepo := repository.NewOutboxRepo(gdb)
	ob := outbox.New(outboxRepo)

	pub := must(mq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange))
	defer pub.Close()
	sender := notifier.NewQueuePublisher(pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Println("[notifier] polling outbox every", pollInterval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := ob.Dispatch(ctx, batchSize, sender.Send)
				if err != nil {
					log.Printf("[notifier] dispatch error: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("[notifier] delivered %d notifications", n)
				}
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
	log.Println("[notifier] stopped")
}
