package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"relative_photometer/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

// The meter keeps exactly one snapshot row; upserts always target id=1.
const (
	meterStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO meter_state (id, estimate_lux, lower_lux, upper_lux, active_samples, sensor_time, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			estimate_lux=excluded.estimate_lux,
			lower_lux=excluded.lower_lux,
			upper_lux=excluded.upper_lux,
			active_samples=excluded.active_samples,
			sensor_time=excluded.sensor_time,
			source=excluded.source,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, estimate_lux, lower_lux, upper_lux, active_samples, sensor_time, source, updated_at
		FROM meter_state WHERE id=?
	`
)

// Save updates or inserts the meter_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.MeterState) error {
	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		meterStateRowID,
		state.EstimateLux,
		state.LowerLux,
		state.UpperLux,
		state.ActiveSamples,
		state.SensorTime,
		state.Source,
		tsUTC,
	)
	return err
}

// Load fetches the single meter_state row (id=1).
func (r *StateSQLite) Load(ctx context.Context) (models.MeterState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, meterStateRowID)

	var s models.MeterState
	if err := row.Scan(
		&s.ID,
		&s.EstimateLux,
		&s.LowerLux,
		&s.UpperLux,
		&s.ActiveSamples,
		&s.SensorTime,
		&s.Source,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MeterState{}, nil // no snapshot yet
		}
		return models.MeterState{}, err
	}

	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
