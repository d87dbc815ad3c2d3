// Package worker runs periodic background jobs, such as evicting idle page
// views of the web client and purging expired token revocations of the API.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

const (
	// DefaultInterval is how often a job runs when it sets no interval
	DefaultInterval = time.Minute

	// DefaultJobTimeout bounds a single run of a job
	DefaultJobTimeout = 30 * time.Second
)

var ErrNoJobs = errors.New("worker: no jobs configured")

// Job is a unit of periodic work. Run returns how many items it handled.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (int, error)
}

// Manager runs each job on its own goroutine until stopped.
type Manager struct {
	jobs       []Job
	interval   time.Duration
	jobTimeout time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	Interval   time.Duration // Used by jobs without their own interval
	JobTimeout time.Duration // Deadline of a single run
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Interval:   DefaultInterval,
		JobTimeout: DefaultJobTimeout,
	}
}

// NewManager creates a new worker manager.
func NewManager(cfg ManagerConfig, jobs ...Job) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}

	return &Manager{
		jobs:       jobs,
		interval:   cfg.Interval,
		jobTimeout: cfg.JobTimeout,
	}
}

// Start begins the job goroutines.
// Call Stop() to gracefully shut down.
func (m *Manager) Start(ctx context.Context) error {
	if len(m.jobs) == 0 {
		return ErrNoJobs
	}
	m.ctx, m.cancel = context.WithCancel(ctx)

	for _, job := range m.jobs {
		if job.Interval <= 0 {
			job.Interval = m.interval
		}
		m.wg.Add(1)
		go m.runJob(job)
	}

	log.Printf("[Manager] All %d jobs started", len(m.jobs))
	return nil
}

// Stop gracefully shuts down all jobs.
// Blocks until every in-flight run has returned.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	log.Printf("[Manager] Stopping jobs...")
	m.cancel()
	m.wg.Wait()
	log.Printf("[Manager] All jobs stopped")
}

// runJob is the main loop for a single job goroutine.
func (m *Manager) runJob(job Job) {
	defer m.wg.Done()

	log.Printf("[Worker-%s] Started (interval=%v)", job.Name, job.Interval)
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			log.Printf("[Worker-%s] Shutting down", job.Name)
			return
		case <-ticker.C:
			m.runOnce(job)
		}
	}
}

// runOnce runs one pass of job, logging instead of propagating failures so
// the next tick tries again.
func (m *Manager) runOnce(job Job) {
	ctx, cancel := context.WithTimeout(m.ctx, m.jobTimeout)
	defer cancel()

	startTime := time.Now()
	n, err := job.Run(ctx)
	if err != nil {
		log.Printf("[Worker-%s] Run FAILED: err=%v", job.Name, err)
		return
	}
	if n > 0 {
		log.Printf("[Worker-%s] Run OK: items=%d duration=%v", job.Name, n, time.Since(startTime))
	}
}
