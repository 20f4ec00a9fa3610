package models

import "time"

// MeterState is the latest illuminance snapshot derived from the tracker.
type MeterState struct {
	ID            int       `json:"id"`
	EstimateLux   float64   `json:"estimate_lux"`
	LowerLux      float64   `json:"lower_lux"`               // effective lower bound at snapshot time
	UpperLux      float64   `json:"upper_lux"`               // effective upper bound at snapshot time
	ActiveSamples int       `json:"active_samples"`          // samples held across both bound sets
	SensorTime    float64   `json:"sensor_time"`             // monotonic seconds of the last frame
	Source        string    `json:"source,omitempty"`        // serial | synthetic | api
	UpdatedAt     time.Time `json:"updated_at"`
}
