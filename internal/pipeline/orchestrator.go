package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docgrep/internal/config"
	"github.com/dgallion1/docgrep/internal/discover"
	"github.com/dgallion1/docgrep/internal/match"
)

// Orchestrator runs queued search jobs for the HTTP server.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	stats *SourceStats
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the job queue. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, stats *SourceStats, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		stats: stats,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.JobWorkers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop waits for running jobs to finish. Queued jobs that have not
// started are dropped.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a job.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed)
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the source statistics shared by all jobs.
func (o *Orchestrator) Stats() *SourceStats {
	return o.stats
}

func (o *Orchestrator) process(job *Job) {
	log := o.log.With("job_id", job.ID)
	job.SetStatus(StatusRunning)

	req := job.Request
	opts := DiscoverOptions(o.cfg)
	if len(req.Suffixes) > 0 {
		opts.Suffixes = req.Suffixes
	}
	paths := job.Paths()
	if len(paths) == 0 {
		paths = []string{o.cfg.SearchRoot}
	}

	plan, err := discover.Build(paths, "", opts)
	if err != nil {
		log.Error("discovery failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed)
		return
	}
	job.SetPlan(plan.Files, plan.Archives)

	contextLen := o.cfg.ContextLength
	if req.ContextLength != nil {
		contextLen = *req.ContextLength
	}
	coord := NewCoordinator(match.NewExtractor(job.Pattern()), job, log, Options{
		Workers:       o.cfg.Workers,
		ContextLength: contextLen,
		Quiet:         req.Quiet,
	}).WithStats(o.stats)

	for _, f := range plan.Failures {
		coord.Emit(Result{Source: f.Label, Err: f.Err})
	}
	sum := coord.Run(plan.Sources)
	sum.Failed += len(plan.Failures)
	job.SetSummary(sum)
	job.SetStatus(StatusCompleted)
	log.Info("search job complete", "sources", sum.Sources, "matched", sum.Matched, "failed", sum.Failed)
}

// DiscoverOptions maps configuration onto path discovery settings.
func DiscoverOptions(cfg config.Config) discover.Options {
	return discover.Options{
		Suffixes:        cfg.Suffixes,
		ArchiveSuffix:   cfg.ArchiveSuffix,
		Junk:            cfg.JunkMarker,
		MaxBytes:        cfg.MaxFileBytes,
		IncludeArchives: cfg.IncludeArchives,
	}
}
