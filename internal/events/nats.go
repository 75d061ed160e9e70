package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

// StreamName is the JetStream stream holding run events.
const StreamName = "DATAGEN_EVENTS"

// jetStreamPublisher is the subset of jetstream.JetStream used by NATSSink.
type jetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSSink publishes run events to JetStream
type NATSSink struct {
	nc *nats.Conn
	js jetStreamPublisher
}

// NewNATSSink connects to url and makes sure the events stream exists.
func NewNATSSink(ctx context.Context, url string, logger *logrus.Entry) (*NATSSink, error) {
	nc, err := nats.Connect(url,
		nats.Name("ecommerce-datagen"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("[NATS] Disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(streamCtx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"datagen.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	}); err != nil {
		logger.WithError(err).Warn("Failed to ensure datagen events stream (may already exist)")
	}

	return &NATSSink{nc: nc, js: js}, nil
}

// NewNATSSinkWith is only for tests to inject a fake JetStream.
func NewNATSSinkWith(js jetStreamPublisher) *NATSSink {
	return &NATSSink{js: js}
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Publish(ctx context.Context, event *RunEvent) error {
	data, err := event.marshal()
	if err != nil {
		return err
	}
	if _, err := s.js.Publish(ctx, event.Subject(), data, jetstream.WithMsgID(event.RunID)); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}

func (s *NATSSink) Close() error {
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}
