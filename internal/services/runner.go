package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce-datagen/internal/config"
	"ecommerce-datagen/internal/events"
	"ecommerce-datagen/internal/fakedata"
	"ecommerce-datagen/internal/repository"

	"github.com/sirupsen/logrus"
)

// ErrRunInProgress is returned when another run holds the run lock.
var ErrRunInProgress = errors.New("a generation run is already in progress")

// RunLock serialises runs against one database
type RunLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	Held(ctx context.Context) (bool, error)
	Distributed() bool
}

// EventPublisher announces finished runs
type EventPublisher interface {
	PublishRunEvent(ctx context.Context, event *events.RunEvent) error
}

// MetricsRecorder records finished runs
type MetricsRecorder interface {
	ObserveRun(status string, rows map[string]int64, stages map[string]time.Duration)
}

// RunRequest selects the size and seed of a run. A zero seed picks one from
// the clock.
type RunRequest struct {
	Counts config.Counts `json:"counts"`
	Seed   uint64        `json:"seed"`
}

// RunService coordinates generation runs
type RunService struct {
	repo      repository.DatagenRepository
	lock      RunLock
	publisher EventPublisher
	metrics   MetricsRecorder
	logger    *logrus.Entry
}

// NewRunService creates a new run service. publisher and metrics may be nil.
func NewRunService(repo repository.DatagenRepository, lock RunLock, publisher EventPublisher, metrics MetricsRecorder, logger *logrus.Entry) *RunService {
	return &RunService{
		repo:      repo,
		lock:      lock,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Run performs one generation run while holding the run lock. It fails with
// ErrRunInProgress before generating anything when the lock is taken.
func (s *RunService) Run(ctx context.Context, req RunRequest) (*RunSummary, error) {
	acquired, err := s.lock.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrRunInProgress
	}
	defer func() {
		if err := s.lock.Unlock(context.Background()); err != nil {
			s.logger.WithError(err).Warn("Failed to release run lock")
		}
	}()

	gen := NewGenerator(s.repo, fakedata.New(req.Seed), s.logger)
	summary, runErr := gen.Run(ctx, req.Counts)

	if s.metrics != nil {
		s.metrics.ObserveRun(string(summary.Status), summary.Rows, stageDurations(summary))
	}
	if s.publisher != nil {
		event := events.NewRunEvent(summary.RunID.String(), summary.Seed, string(summary.Status), summary.Rows, summary.Duration(), runErr)
		// Delivery problems never fail the run.
		if err := s.publisher.PublishRunEvent(context.Background(), event); err != nil {
			s.logger.WithError(err).Warn("Run event was not delivered to every broker")
		}
	}

	if runErr != nil {
		return summary, fmt.Errorf("generation run %s failed: %w", summary.RunID, runErr)
	}
	return summary, nil
}

func stageDurations(summary *RunSummary) map[string]time.Duration {
	durations := make(map[string]time.Duration, len(summary.Stages))
	for _, stage := range summary.Stages {
		durations[stage.Stage] = stage.Duration
	}
	return durations
}

// LockStatus describes the run lock for operators.
type LockStatus struct {
	Backend string `json:"backend"`
	Running bool   `json:"running"`
}

// LockStatus reports whether a run currently holds the lock and which backend
// the lock uses.
func (s *RunService) LockStatus(ctx context.Context) (LockStatus, error) {
	status := LockStatus{Backend: "local"}
	if s.lock.Distributed() {
		status.Backend = "redis"
	}
	held, err := s.lock.Held(ctx)
	if err != nil {
		return status, err
	}
	status.Running = held
	return status, nil
}

// Stats returns the current row count of every generated table.
func (s *RunService) Stats(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountRows(ctx)
}
