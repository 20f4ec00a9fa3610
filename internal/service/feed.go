package service

import (
	"context"
	"errors"
	"time"

	"relative_photometer/internal/logger"
	"relative_photometer/internal/photometer"
)

// FrameSource delivers raw 2-byte frames from a physical or synthetic
// sensor. ReadFrame blocks until a frame is available, the source fails, or
// ctx is canceled.
type FrameSource interface {
	ReadFrame(ctx context.Context) ([photometer.FrameSize]byte, error)
}

// readRetryDelay spaces out retries after a source read error so a wedged
// serial port does not spin the loop.
const readRetryDelay = 500 * time.Millisecond

// FeedService pumps frames from the sensor source into the meter.
type FeedService struct {
	meter  Meter
	source FrameSource
	log    *logger.Logger
}

// NewFeedService returns a feed for the given source. A nil source yields a
// feed whose Run returns immediately (station driven purely over the API).
func NewFeedService(meter Meter, source FrameSource, log *logger.Logger) *FeedService {
	return &FeedService{meter: meter, source: source, log: log}
}

// Run pulls frames until ctx is canceled. Read and persistence errors are
// logged and retried; the loop only exits with the context.
func (s *FeedService) Run(ctx context.Context) {
	if s.source == nil {
		return
	}
	for {
		frame, err := s.source.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			if s.log != nil {
				s.log.Errorw("sensor_read_failed", "err", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}

		if _, err := s.meter.IngestFrame(ctx, frame, "feed"); err != nil {
			if s.log != nil {
				s.log.Errorw("frame_ingest_failed", "err", err)
			}
		}
	}
}
