package feedmill

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nkemp/feedmill/sources"
)

// Registry is the slice of the source store the service needs: which
// sources to sweep and where to record that a sweep touched them.
type Registry interface {
	ListEnabled() ([]sources.Source, error)
	MarkChecked(id uuid.UUID, t time.Time) error
}

// Service runs periodic sweeps over all enabled sources and purges
// articles past the retention horizon after each sweep.
type Service struct {
	Registry Registry
	Pipeline *Pipeline
	Interval time.Duration
	Log      *slog.Logger

	stop chan struct{}
}

// NewService builds a sweep service. A non-positive interval falls back to
// one hour.
func NewService(registry Registry, pipeline *Pipeline, interval time.Duration, log *slog.Logger) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		Registry: registry,
		Pipeline: pipeline,
		Interval: interval,
		Log:      log,
		stop:     make(chan struct{}),
	}
}

// Run sweeps immediately, then on every tick, until the context is
// cancelled or Stop is called.
func (s *Service) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Stop terminates Run after the current sweep finishes.
func (s *Service) Stop() {
	close(s.stop)
}

// Sweep ingests every enabled source in sequence. A failing source is
// logged and skipped; the sweep continues with the rest. After the sweep a
// retention purge runs.
func (s *Service) Sweep(ctx context.Context) {
	srcs, err := s.Registry.ListEnabled()
	if err != nil {
		s.Log.Error("failed to list sources for sweep", "error", err)
		return
	}

	for _, src := range srcs {
		if ctx.Err() != nil {
			return
		}
		result, err := s.Pipeline.RunIngestionForSource(ctx, src)
		if err != nil {
			s.Log.Error("sweep skipping source", "source", src.Name, "error", err)
			continue
		}
		if err := s.Registry.MarkChecked(src.ID, s.Pipeline.Now()); err != nil {
			s.Log.Error("failed to mark source checked", "source", src.Name, "error", err)
		}
		s.Log.Info("swept source", "source", src.Name, "added", result.Added)
	}

	if _, err := s.Pipeline.PurgeOlderThan(RetentionHorizon); err != nil {
		s.Log.Error("retention purge failed", "error", err)
	}
}
