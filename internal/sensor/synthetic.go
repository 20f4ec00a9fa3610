package sensor

import (
	"context"
	"math/rand"
	"time"

	"relative_photometer/internal/photometer"
)

// ----------- Synthetic sensor constants -----------
const (
	defaultSynthInterval = 1 * time.Second

	synthDriftLux  = 2000.0 // max illuminance drift per emitted frame
	synthMarginLux = 3000.0 // max slack between the true level and a bound
	synthMinLux    = 0.0
	synthMaxLux    = 100e3

	synthMinExponent = 4 // 0.264 s
	synthMaxExponent = 9 // 8.448 s

	synthClearOdds = 64 // roughly one clearing frame per 64
)

// Synthetic emits plausible bound frames from a random walk, standing in for
// the hardware when no serial port is configured.
type Synthetic struct {
	interval time.Duration
	rng      *rand.Rand
	level    float64 // drifting "true" illuminance
}

// NewSynthetic returns a generator emitting one frame per interval. An
// interval of 0 selects the default of one second.
func NewSynthetic(interval time.Duration, seed int64) *Synthetic {
	if interval <= 0 {
		interval = defaultSynthInterval
	}
	return &Synthetic{
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		level:    50e3,
	}
}

// ReadFrame waits one interval, advances the random walk, and encodes a
// bound consistent with the walk's current level.
func (s *Synthetic) ReadFrame(ctx context.Context) ([photometer.FrameSize]byte, error) {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return [photometer.FrameSize]byte{}, ctx.Err()
	case <-timer.C:
	}
	return photometer.Encode(s.nextSample()), nil
}

// nextSample drifts the level and reports a one-sided bound around it.
func (s *Synthetic) nextSample() photometer.Sample {
	s.level += (s.rng.Float64()*2 - 1) * synthDriftLux
	if s.level < synthMinLux {
		s.level = synthMinLux
	} else if s.level > synthMaxLux {
		s.level = synthMaxLux
	}

	margin := s.rng.Float64() * synthMarginLux
	direction := photometer.LowerBound
	value := s.level - margin
	if s.rng.Intn(2) == 1 {
		direction = photometer.UpperBound
		value = s.level + margin
	}

	exponent := synthMinExponent + s.rng.Intn(synthMaxExponent-synthMinExponent+1)
	horizon := photometer.HorizonBase * float64(uint32(1)<<exponent)

	return photometer.Sample{
		Start:      0,
		End:        horizon,
		Direction:  direction,
		Value:      value,
		Clear:      s.rng.Intn(synthClearOdds) == 0,
		Confidence: uint8(s.rng.Intn(4)),
	}
}
