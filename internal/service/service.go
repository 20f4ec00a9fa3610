package service

import (
	"context"

	"relative_photometer/internal/logger"
	"relative_photometer/internal/models"
	"relative_photometer/internal/photometer"
	"relative_photometer/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Meter exposes the bound-tracking estimator: frame ingestion, point-in-time
// estimate queries, and a full reset.
type Meter interface {
	IngestFrame(ctx context.Context, frame [photometer.FrameSize]byte, source string) (models.MeterState, error)
	IngestFrameAt(ctx context.Context, at float64, frame [photometer.FrameSize]byte, source string) (models.MeterState, error)
	EstimateAt(at float64) float64
	Estimate() float64
	SensorNow() float64
	Reset(ctx context.Context) error
}

// Monitoring exposes the latest persisted illuminance snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.MeterState, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SensorEvent, error)
}

// Feed runs the background loop that pulls frames from the sensor source.
// Stop via context cancellation in main() for graceful shutdown.
type Feed interface {
	Run(ctx context.Context)
}

// Root Service aggregates all sub-services.
type Service struct {
	Meter
	Monitoring
	EventLog
	Feed
	Authorization
}

// Deps carries the non-repository dependencies the services need.
type Deps struct {
	Source     FrameSource
	SigningKey string
	Log        *logger.Logger
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	meter := NewMeterService(repos.StateRepo, repos.EventRepo)
	return &Service{
		Meter:         meter,
		Monitoring:    NewMonitoringService(repos.StateRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Feed:          NewFeedService(meter, deps.Source, deps.Log),
		Authorization: NewAuthService(repos.Auth, deps.SigningKey),
	}
}
