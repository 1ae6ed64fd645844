package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/programme-lv/kernval/internal/environment"
	"github.com/programme-lv/kernval/internal/gatherer"
	"github.com/programme-lv/kernval/internal/gatherer/natsgath"
	"github.com/programme-lv/kernval/internal/gatherer/sqsgath"
	"github.com/programme-lv/kernval/internal/gatherer/termgath"
	"github.com/programme-lv/kernval/internal/logger"
)

// gatherers returns the sinks configured for the run. The returned func
// flushes and closes any connections they hold.
func gatherers(ctx context.Context, cfg environment.RunConfig, verbose bool, sqsRegion string, log *slog.Logger) (gatherer.Fanout, func(), error) {
	sinks := gatherer.Fanout{termgath.New(verbose)}
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.NatsURL != "" {
		g, nc, err := natsgath.Connect(cfg.NatsURL, cfg.RunID, cfg.NatsSubject, logger.Component(log, "nats"))
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NatsURL, err)
		}
		closers = append(closers, func() {
			if err := nc.Drain(); err != nil {
				log.Warn("failed to drain NATS connection", "err", err)
			}
		})
		sinks = append(sinks, g)
		log.Info("streaming to NATS", "subject", cfg.NatsSubject)
	}

	if cfg.SQSQueueURL != "" {
		g, err := sqsgath.New(ctx, cfg.RunID, cfg.SQSQueueURL, sqsRegion, logger.Component(log, "sqs"))
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sinks = append(sinks, g)
		log.Info("streaming to SQS", "queue", cfg.SQSQueueURL)
	}

	return sinks, closeAll, nil
}
