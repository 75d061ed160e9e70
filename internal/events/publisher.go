// Package events publishes run lifecycle events to NATS JetStream and Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Event types
const (
	RunCompleted = "datagen.run.completed"
	RunFailed    = "datagen.run.failed"
)

// RunEvent announces the outcome of a generation run
type RunEvent struct {
	EventType       string           `json:"eventType"`
	RunID           string           `json:"runId"`
	Seed            uint64           `json:"seed"`
	Status          string           `json:"status"`
	Rows            map[string]int64 `json:"rows,omitempty"`
	DurationSeconds float64          `json:"durationSeconds"`
	Error           string           `json:"error,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

// NewRunEvent builds the event for a run that ended with status.
func NewRunEvent(runID string, seed uint64, status string, rows map[string]int64, duration time.Duration, runErr error) *RunEvent {
	event := &RunEvent{
		EventType:       RunCompleted,
		RunID:           runID,
		Seed:            seed,
		Status:          status,
		Rows:            rows,
		DurationSeconds: duration.Seconds(),
		Timestamp:       time.Now().UTC(),
	}
	if runErr != nil {
		event.EventType = RunFailed
		event.Error = runErr.Error()
	}
	return event
}

// Subject returns the NATS subject the event is published on.
func (e *RunEvent) Subject() string {
	return e.EventType
}

func (e *RunEvent) marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run event: %w", err)
	}
	return data, nil
}

// Sink delivers run events to one broker
type Sink interface {
	Name() string
	Publish(ctx context.Context, event *RunEvent) error
	Close() error
}

// Publisher fans run events out to every configured sink. A Publisher with
// no sinks drops events.
type Publisher struct {
	sinks   []Sink
	timeout time.Duration
	logger  *logrus.Entry
}

// NewPublisher creates a new run events publisher
func NewPublisher(logger *logrus.Entry, sinks ...Sink) *Publisher {
	return &Publisher{
		sinks:   sinks,
		timeout: 10 * time.Second,
		logger:  logger.WithField("component", "datagen-events"),
	}
}

// Enabled reports whether any sink is configured.
func (p *Publisher) Enabled() bool {
	return len(p.sinks) > 0
}

// PublishRunEvent sends event to every sink. Failures are logged and joined
// into the returned error; one failing sink does not stop the others.
func (p *Publisher) PublishRunEvent(ctx context.Context, event *RunEvent) error {
	var errs []error
	for _, sink := range p.sinks {
		pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := sink.Publish(pubCtx, event)
		cancel()

		fields := logrus.Fields{
			"sink":      sink.Name(),
			"eventType": event.EventType,
			"runID":     event.RunID,
		}
		if err != nil {
			p.logger.WithFields(fields).WithError(err).Error("Failed to publish run event")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		p.logger.WithFields(fields).Info("Run event published successfully")
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (p *Publisher) Close() error {
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
