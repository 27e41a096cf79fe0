package devices

import (
	"context"
	"time"

	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
)

// Sweeper periodically marks devices offline when their heartbeat goes
// stale. A failed sweep is logged and skipped; the next tick retries.
type Sweeper struct {
	service *Service
	cfg     config.LivenessConfig
	metrics *observability.Metrics
	logger  *observability.Logger
}

func NewSweeper(service *Service, cfg config.LivenessConfig, metrics *observability.Metrics, logger *observability.Logger) *Sweeper {
	return &Sweeper{
		service: service,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per tick.
func (s *Sweeper) Run(ctx context.Context) {
	ctx = context.WithValue(ctx, observability.JobKey, "device_liveness_sweep")

	ticker := time.NewTicker(s.cfg.SweepEvery)
	defer ticker.Stop()

	s.logger.Info(ctx, "Device liveness sweeper started",
		s.logger.Field("stale_after", s.cfg.StaleAfter.String()),
		s.logger.Field("sweep_every", s.cfg.SweepEvery.String()),
	)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			s.logger.Info(ctx, "Device liveness sweeper stopped")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.service.SweepStale(sweepCtx, s.cfg.StaleAfter)
	s.metrics.RecordBackgroundJob("device_liveness_sweep", time.Since(start), err)

	if err != nil {
		s.logger.Error(ctx, "Device liveness sweep failed", s.logger.Field("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Info(ctx, "Devices marked offline", s.logger.Field("count", n))
	}
}
