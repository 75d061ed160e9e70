package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJetStream struct {
	mock.Mock
}

func (m *mockJetStream) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	args := m.Called(subject, payload)
	if ack := args.Get(0); ack != nil {
		return ack.(*jetstream.PubAck), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeKafkaWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeKafkaWriter) Close() error {
	f.closed = true
	return nil
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

func TestNewRunEvent(t *testing.T) {
	ok := NewRunEvent("run-1", 42, "completed", map[string]int64{"orders": 5}, 2*time.Second, nil)
	assert.Equal(t, RunCompleted, ok.EventType)
	assert.Equal(t, "datagen.run.completed", ok.Subject())
	assert.Empty(t, ok.Error)
	assert.Equal(t, 2.0, ok.DurationSeconds)

	failed := NewRunEvent("run-2", 42, "failed", nil, time.Second, errors.New("boom"))
	assert.Equal(t, RunFailed, failed.EventType)
	assert.Equal(t, "boom", failed.Error)
}

func TestPublisherFansOut(t *testing.T) {
	js := &mockJetStream{}
	js.On("Publish", RunCompleted, mock.Anything).Return(&jetstream.PubAck{Stream: StreamName}, nil).Once()
	writer := &fakeKafkaWriter{}

	p := NewPublisher(testLogger(), NewNATSSinkWith(js), NewKafkaSinkWith(writer))
	require.True(t, p.Enabled())

	event := NewRunEvent("run-1", 7, "completed", map[string]int64{"customers": 3}, time.Second, nil)
	require.NoError(t, p.PublishRunEvent(context.Background(), event))

	js.AssertExpectations(t)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, []byte("run-1"), writer.messages[0].Key)

	var decoded RunEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, int64(3), decoded.Rows["customers"])
	assert.Equal(t, uint64(7), decoded.Seed)
}

func TestPublisherContinuesAfterSinkFailure(t *testing.T) {
	js := &mockJetStream{}
	js.On("Publish", RunFailed, mock.Anything).Return(nil, errors.New("no responders")).Once()
	writer := &fakeKafkaWriter{}

	p := NewPublisher(testLogger(), NewNATSSinkWith(js), NewKafkaSinkWith(writer))
	err := p.PublishRunEvent(context.Background(), NewRunEvent("run-9", 1, "failed", nil, 0, errors.New("boom")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats")
	assert.Len(t, writer.messages, 1)
}

func TestPublisherWithoutSinks(t *testing.T) {
	p := NewPublisher(testLogger())

	assert.False(t, p.Enabled())
	assert.NoError(t, p.PublishRunEvent(context.Background(), NewRunEvent("run", 1, "completed", nil, 0, nil)))
	assert.NoError(t, p.Close())
}

func TestCloseClosesSinks(t *testing.T) {
	writer := &fakeKafkaWriter{}
	p := NewPublisher(testLogger(), NewKafkaSinkWith(writer), NewNATSSinkWith(&mockJetStream{}))

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}
