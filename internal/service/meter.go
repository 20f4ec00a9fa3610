package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"relative_photometer/internal/models"
	"relative_photometer/internal/photometer"
	"relative_photometer/internal/repository"

	"github.com/google/uuid"
)

// Event types recorded by the meter.
const (
	EventFrame = "FRAME"
	EventClear = "CLEAR"
	EventReset = "RESET"
	EventError = "ERROR"
)

// MeterService owns the bound tracker and the station's monotonic sensor
// clock. The tracker itself is single-threaded; the mutex here is the
// external serialization for the HTTP handlers and the background feed.
type MeterService struct {
	mu      sync.Mutex
	tracker *photometer.Tracker
	started time.Time
	lastAt  float64

	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
}

func NewMeterService(stateRepo repository.StateRepo, eventRepo repository.EventRepo) *MeterService {
	return &MeterService{
		tracker:   photometer.NewTracker(),
		started:   time.Now(),
		stateRepo: stateRepo,
		eventRepo: eventRepo,
	}
}

// SensorNow returns the station's monotonic sensor time: seconds since the
// meter service came up.
func (s *MeterService) SensorNow() float64 {
	return time.Since(s.started).Seconds()
}

// IngestFrame feeds a raw frame stamped with the station clock. This is the
// live path used by the background feed.
func (s *MeterService) IngestFrame(ctx context.Context, frame [photometer.FrameSize]byte, source string) (models.MeterState, error) {
	return s.IngestFrameAt(ctx, s.SensorNow(), frame, source)
}

// IngestFrameAt feeds a raw frame with an explicit monotonic timestamp, for
// replaying recorded frame logs. Timestamps must be non-decreasing across
// calls; the tracker does not enforce this.
func (s *MeterService) IngestFrameAt(ctx context.Context, at float64, frame [photometer.FrameSize]byte, source string) (models.MeterState, error) {
	sample := photometer.Decode(at, frame)

	s.mu.Lock()
	s.tracker.Consume(sample)
	s.lastAt = at
	state := s.snapshotLocked(at, source)
	s.mu.Unlock()

	if err := s.stateRepo.Save(ctx, state); err != nil {
		return models.MeterState{}, fmt.Errorf("save meter snapshot: %w", err)
	}

	typ := EventFrame
	desc := "frame ingested"
	if sample.Clear {
		typ = EventClear
		desc = "clearing frame ingested; prior samples flushed"
	}
	if err := s.eventRepo.Append(ctx, models.SensorEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata: map[string]any{
			"sensor_time": at,
			"frame":       fmt.Sprintf("%02x%02x", frame[0], frame[1]),
			"direction":   sample.Direction.String(),
			"value_lux":   sample.Value,
			"confidence":  sample.Confidence,
			"expires":     sample.End,
			"source":      source,
		},
	}); err != nil {
		return models.MeterState{}, err
	}

	return state, nil
}

// EstimateAt answers a point-in-time query against the live tracker.
func (s *MeterService) EstimateAt(at float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.EstimateAt(at)
}

// Estimate treats every held sample as valid, an "as of last known state"
// read without an eviction pass.
func (s *MeterService) Estimate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Estimate()
}

// Reset discards every held sample and persists an idle snapshot.
func (s *MeterService) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.tracker = photometer.NewTracker()
	at := s.SensorNow()
	s.lastAt = at
	state := s.snapshotLocked(at, "api")
	s.mu.Unlock()

	if err := s.stateRepo.Save(ctx, state); err != nil {
		return fmt.Errorf("save meter snapshot: %w", err)
	}
	return s.eventRepo.Append(ctx, models.SensorEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        EventReset,
		Description: "tracker reset; all samples discarded",
		Metadata:    map[string]any{"sensor_time": at},
	})
}

// snapshotLocked builds the persistable state as of the given sensor time.
// Callers must hold s.mu.
func (s *MeterService) snapshotLocked(at float64, source string) models.MeterState {
	lower, upper := s.tracker.BoundsAt(at)
	return models.MeterState{
		ID:            1,
		EstimateLux:   0.5 * (lower + upper),
		LowerLux:      lower,
		UpperLux:      upper,
		ActiveSamples: s.tracker.Size(),
		SensorTime:    at,
		Source:        source,
		UpdatedAt:     time.Now().UTC(),
	}
}
