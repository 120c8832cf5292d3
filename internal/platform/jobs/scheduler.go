// Package jobs runs recurring background work on fixed intervals.
package jobs

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Job is one unit of recurring work.
type Job func(ctx context.Context) error

// Scheduler runs a single named job on a fixed interval, one invocation at
// a time. It stops when its context is cancelled.
type Scheduler struct {
	name     string
	interval time.Duration
	job      Job
	log      zerolog.Logger

	mu       sync.Mutex
	running  bool
	lastRun  time.Time
	lastErr  string
	runCount int64
}

func NewScheduler(name string, interval time.Duration, job Job, log zerolog.Logger) *Scheduler {
	return &Scheduler{name: name, interval: interval, job: job, log: log}
}

// Start launches the ticker loop in its own goroutine. Calling Start on a
// running scheduler has no effect.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info().Str("job", s.name).Dur("interval", s.interval).Msg("recurring job started")

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.mu.Lock()
				s.running = false
				s.mu.Unlock()
				s.log.Info().Str("job", s.name).Msg("recurring job stopped")
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	err := s.job(ctx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.runCount++
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Str("job", s.name).Msg("recurring job failed")
	}
}

// Info is the status snapshot served at /jobs/info.
type Info struct {
	Name            string `json:"name"`
	IntervalSeconds int    `json:"intervalSeconds"`
	Running         bool   `json:"running"`
	RunCount        int64  `json:"runCount"`
	LastRun         string `json:"lastRun,omitempty"`
	LastError       string `json:"lastError,omitempty"`
}

// Snapshot returns the current status of the scheduler.
func (s *Scheduler) Snapshot() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		Name:            s.name,
		IntervalSeconds: int(s.interval / time.Second),
		Running:         s.running,
		RunCount:        s.runCount,
		LastError:       s.lastErr,
	}
	if !s.lastRun.IsZero() {
		info.LastRun = s.lastRun.UTC().Format(time.RFC3339)
	}
	return info
}

// RegisterRoutes exposes the status endpoint.
func (s *Scheduler) RegisterRoutes(e *echo.Echo) {
	e.GET("/jobs/info", func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.Snapshot())
	})
}
