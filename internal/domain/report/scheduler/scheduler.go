package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// WeeklyReportProcessor generates the weekly report when it is due
type WeeklyReportProcessor interface {
	ProcessWeeklyReports(ctx context.Context) error
}

// Scheduler periodically triggers weekly report generation
type Scheduler struct {
	processor WeeklyReportProcessor
	interval  time.Duration
	logger    zerolog.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// New creates a new scheduler
func New(processor WeeklyReportProcessor, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		processor: processor,
		interval:  interval,
		logger:    logger.With().Str("component", "report-scheduler").Logger(),
		stopCh:    make(chan struct{}),
	}
}

// Start starts the scheduler. Calling it twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().Dur("interval", s.interval).Msg("report scheduler started")

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler and waits for the current run to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("report scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.process(ctx)

	for {
		select {
		case <-ticker.C:
			s.process(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) process(ctx context.Context) {
	s.logger.Debug().Msg("checking weekly report")

	if err := s.processor.ProcessWeeklyReports(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to process weekly reports")
	}
}
