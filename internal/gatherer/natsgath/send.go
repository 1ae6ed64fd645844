package natsgath

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

type publisher struct {
	nc      *nats.Conn
	subject string
}

func (p *publisher) Publish(body []byte) error {
	if err := p.nc.Publish(p.subject, body); err != nil {
		return fmt.Errorf("failed to publish message to NATS subject %s: %w", p.subject, err)
	}
	return nil
}
