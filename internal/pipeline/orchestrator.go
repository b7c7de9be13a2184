package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/config"
	"github.com/dgallion1/careersync/internal/store"
)

var (
	ErrQueueFull = errors.New("job queue is full")
	ErrStopped   = errors.New("pipeline is stopped")
)

// maxCleanupInterval caps how long expired jobs linger past their TTL.
const maxCleanupInterval = 5 * time.Minute

// Orchestrator runs replacement jobs on a bounded worker pool.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	store *store.FS
	stats *DurationStats
	log   *slog.Logger
	cfg   config.Config

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline; call Start to run workers.
func NewOrchestrator(cfg config.Config, fs *store.FS, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		store: fs,
		stats: NewDurationStats(cfg.JobTTL),
		log:   log,
		cfg:   cfg,
	}
}

// Start launches the workers and the expired-job sweeper.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	policy := catalog.CodePolicy(o.cfg.CodePolicy)
	for i := range o.cfg.WorkerCount {
		o.wg.Add(1)
		go o.runWorker(ctx, NewWorker(o.store, o.stats, o.log.With("worker", i), policy))
	}

	o.wg.Add(1)
	go o.sweep(ctx, cleanupInterval(o.cfg.JobTTL))

	o.log.Info("pipeline started", "workers", o.cfg.WorkerCount, "queue_size", o.cfg.MaxQueueSize)
}

func (o *Orchestrator) runWorker(ctx context.Context, w *Worker) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) sweep(ctx context.Context, every time.Duration) {
	defer o.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := o.jobs.Len()
			o.jobs.Cleanup()
			if evicted := before - o.jobs.Len(); evicted > 0 {
				o.log.Debug("expired jobs evicted", "count", evicted)
			}
		}
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > maxCleanupInterval {
		return maxCleanupInterval
	}
	return ttl
}

// Stop cancels in-flight work and waits for the workers. Jobs still queued
// are marked failed, and later submissions fail with ErrStopped.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()

	dropped := 0
	for job := range o.queue {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "stopped")
		dropped++
	}
	if dropped > 0 {
		o.log.Warn("queued jobs dropped on stop", "count", dropped)
	}
}

// Submit queues a job without blocking. A job that cannot be queued is
// still tracked, marked failed, so its ID can be polled.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.RLock()
	defer o.mu.RUnlock()

	var err error
	phase := "queue_full"
	if o.stopped {
		err, phase = ErrStopped, "stopped"
	} else {
		select {
		case o.queue <- job:
			o.log.Debug("job queued", "job_id", job.ID, "table", job.Table, "depth", len(o.queue))
			return nil
		default:
			err = fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
		}
	}
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
	return err
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// TrackedJobs returns how many jobs are held in the store.
func (o *Orchestrator) TrackedJobs() int {
	return o.jobs.Len()
}

// Stats returns job duration statistics.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}
