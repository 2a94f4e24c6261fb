package notification

import (
	"encoding/json"
	"fmt"
	"log"

	"TrafficScope/internal/config"
	"TrafficScope/internal/model"

	"github.com/nats-io/nats.go"
)

// EventPublisher publishes run summaries to a NATS subject so downstream
// consumers (dashboards, SIEM feeds) can react to completed analyses.
type EventPublisher struct {
	nc      *nats.Conn
	subject string
}

// summaryEvent is the wire payload for one completed run.
type summaryEvent struct {
	RunID   string               `json:"run_id"`
	Summary model.AnomalySummary `json:"summary"`
}

// NewEventPublisher connects to the configured NATS server.
func NewEventPublisher(cfg config.NATSConfig) (*EventPublisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &EventPublisher{nc: nc, subject: cfg.Subject}, nil
}

// PublishSummary serializes the run summary to JSON and publishes it.
func (p *EventPublisher) PublishSummary(runID string, summary model.AnomalySummary) error {
	data, err := json.Marshal(summaryEvent{RunID: runID, Summary: summary})
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *EventPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
