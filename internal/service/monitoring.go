package service

import (
	"context"
	"time"

	"relative_photometer/internal/models"
	"relative_photometer/internal/repository"
)

// Idle defaults when no frame has ever been ingested: the universal bounds
// and their 50 klx midpoint.
const (
	idleEstimateLux = 50e3
	idleLowerLux    = 0.0
	idleUpperLux    = 100e3
)

type MonitoringService struct {
	stateRepo repository.StateRepo
}

func NewMonitoringService(stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo}
}

// GetState returns the latest persisted meter snapshot.
// If no snapshot is persisted yet, returns the idle baseline.
func (s *MonitoringService) GetState(ctx context.Context) (models.MeterState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.MeterState{}, err
	}
	if state.ID == 0 {
		return s.baselineState(), nil
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// baselineState returns a sensible default snapshot for an uninitialized DB.
func (s *MonitoringService) baselineState() models.MeterState {
	return models.MeterState{
		ID:          1, // DB schema enforces single-row state with id=1
		EstimateLux: idleEstimateLux,
		LowerLux:    idleLowerLux,
		UpperLux:    idleUpperLux,
		UpdatedAt:   time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
