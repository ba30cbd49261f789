// Command sweep deletes every reservation that has ended and exits.
package main

import (
	"context"
	"log"
	"time"

	"github.com/myceliumAI/polypore/internal/config"
	"github.com/myceliumAI/polypore/internal/database"
	"github.com/myceliumAI/polypore/internal/events"
	"github.com/myceliumAI/polypore/internal/modules/sweep"
	"github.com/myceliumAI/polypore/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	var sinks []events.Sink
	if cfg.AMQPURL != "" {
		if s, err := events.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
			log.Printf("amqp_sink_disabled error=%q", err.Error())
		} else {
			sinks = append(sinks, s)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	fanout := events.NewFanout(sinks...)
	defer fanout.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo := repository.NewReservationRepository(db, cfg.TxMaxRetries)
	n, err := sweep.NewSweeper(repo, fanout, nil).RunOnce(ctx)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	log.Printf("sweep completed: reservations=%d", n)
}
