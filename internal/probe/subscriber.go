package probe

import (
	"log"

	"github.com/nats-io/nats.go"

	"gosniff/internal/config"
	"gosniff/internal/model"
)

// RecordHandler processes one received record.
type RecordHandler func(rec *model.PacketRecord)

// Subscriber receives records published by a remote capture probe.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber connects to the configured NATS server.
func NewSubscriber(cfg config.NATSConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes and feeds every decodable message to handler. Messages
// that fail to decode are logged and skipped, never fatal.
func (s *Subscriber) Start(handler RecordHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		rec, err := decodeRecord(msg.Data)
		if err != nil {
			log.Printf("Error decoding record: %v", err)
			return
		}
		handler(rec)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for messages...", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
