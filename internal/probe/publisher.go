// Package probe moves decoded records between hosts over NATS, so one
// machine can capture while another aggregates.
package probe

import (
	"log"

	"github.com/nats-io/nats.go"

	"gosniff/internal/config"
	"gosniff/internal/model"
)

// Publisher publishes captured records to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes one record and publishes it to the configured subject.
func (p *Publisher) Publish(rec *model.PacketRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
