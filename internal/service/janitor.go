package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/ekefan/afitlms/config"
	"github.com/ekefan/afitlms/internal/core"
	"github.com/ekefan/afitlms/internal/data"
	"github.com/ekefan/afitlms/internal/observability/metrics"
	"github.com/ekefan/afitlms/internal/observability/statsd"
)

// JanitorServiceOptions groups dependencies for JanitorService.
type JanitorServiceOptions struct {
	Jobs    core.EnrollmentJobStore // Required: job state store
	Config  config.JanitorConfig    // Required: janitor configuration
	Logger  *slog.Logger            // Optional: structured logger
	Metrics statsd.Sink             // Optional: metrics sink (StatsD-compatible)
	Time    data.TimeProvider       // Optional: clock, defaults to real time
}

// JanitorService removes expired enrollment job records so abandoned jobs do
// not accumulate. Age is measured from creation regardless of status, so an
// orphaned in-flight record eventually goes too.
type JanitorService struct {
	jobs    core.EnrollmentJobStore
	config  config.JanitorConfig
	logger  *slog.Logger
	metrics statsd.Sink
	time    data.TimeProvider
}

// NewJanitorService constructs a new JanitorService.
func NewJanitorService(opts JanitorServiceOptions) (*JanitorService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("EnrollmentJobStore is required")
	}

	timeProvider := opts.Time
	if timeProvider == nil {
		timeProvider = &data.RealTimeProvider{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "janitor_service")
		logger.Debug("JanitorService initialized",
			"interval", opts.Config.Interval,
			"max_age", opts.Config.MaxAge,
		)
	}

	return &JanitorService{
		jobs:    opts.Jobs,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
		time:    timeProvider,
	}, nil
}

// Run starts the janitor loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *JanitorService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting janitor service", "interval", s.config.Interval)
	}

	// Jitter the first sweep so co-located instances do not tick together.
	s.waitWithJitter(ctx)
	if ctx.Err() != nil {
		return suppressCancellation(ctx.Err())
	}

	s.Sweep(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "janitor service stopping", "reason", ctx.Err())
			}
			return suppressCancellation(ctx.Err())
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep removes every job older than the configured max age and returns how
// many were removed.
func (s *JanitorService) Sweep(ctx context.Context) int {
	cutoff := s.time.Now().Add(-s.config.MaxAge)
	removed := s.jobs.DeleteOlderThan(cutoff)

	if removed > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "removed expired enrollment jobs",
			"count", removed,
			"max_age", s.config.MaxAge,
		)
	}

	result := metrics.ResultNoop
	if removed > 0 {
		result = metrics.ResultSuccess
	}
	metrics.EmitSweep(s.metrics, removed, result)
	if s.metrics != nil {
		s.metrics.Gauge("janitor.jobs_tracked", float64(s.jobs.Len()), nil)
	}

	return removed
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *JanitorService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Skip jitter rather than failing startup.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func suppressCancellation(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
