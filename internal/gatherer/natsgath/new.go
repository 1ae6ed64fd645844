// Package natsgath streams run progress to a NATS subject.
package natsgath

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/kernval/internal/gatherer"
)

// New creates a gatherer that publishes every run event to subject.
func New(nc *nats.Conn, runID string, subject string, logger *slog.Logger) *gatherer.Stream {
	return gatherer.NewStream(runID, &publisher{nc: nc, subject: subject}, logger)
}

// Connect dials url and returns a gatherer together with the connection,
// which the caller drains once the run has finished.
func Connect(url string, runID string, subject string, logger *slog.Logger) (*gatherer.Stream, *nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("kernval "+runID))
	if err != nil {
		return nil, nil, err
	}
	return New(nc, runID, subject, logger), nc, nil
}
