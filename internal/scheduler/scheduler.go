package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-gateway/internal/weather"
)

const probeTimeout = 30 * time.Second

// Prober is the gateway operation the probe exercises.
type Prober interface {
	SearchCities(ctx context.Context, text string, limit int) weather.Result[[]string]
}

// ResultStore records probe outcomes.
type ResultStore interface {
	Save(result weather.ProbeResult)
}

// Scheduler periodically checks that the upstream provider answers.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	store     ResultStore
	query     string
	interval  time.Duration
}

// New creates a new Scheduler. A non-positive interval disables probing.
func New(prober Prober, store ResultStore, query string, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		store:     store,
		query:     query,
		interval:  interval,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: probe interval is zero; upstream probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.Probe()
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Probe runs one reachability check and records it.
func (s *Scheduler) Probe() weather.ProbeResult {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	start := time.Now()
	res := s.prober.SearchCities(ctx, s.query, 1)

	result := weather.ProbeResult{
		CheckedAt: start.UTC(),
		OK:        res.OK(),
		Reason:    res.Reason(),
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if !result.OK {
		log.Printf("scheduler: upstream probe failed: %v", res.Err)
	}

	if s.store != nil {
		s.store.Save(result)
	}
	return result
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
