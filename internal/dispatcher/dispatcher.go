// =============================================================================
// File Processing Engine - Dispatcher
// =============================================================================
//
// The dispatcher is the scheduling loop of the daemon. On every cycle it asks
// the watcher for eligible files and hands each new one to a fixed pool of
// workers. The pool is created once per Run and reused across cycles.
//
// DISPATCH RULES:
//   - A path already in flight is never submitted again.
//   - A path that failed is not resubmitted until the file changes.
//   - When the queue is full, remaining files wait for the next cycle.
//   - A watcher failure, or an unavailable destination directory, is logged
//     and the cycle contributes no tasks.
//   - A task that fails because a directory is unavailable is not held
//     against the file; it is submitted again on a later cycle.
//
// SHUTDOWN:
//   When the context ends the loop stops polling. Queued tasks that have not
//   started are dropped (their files stay in place). Started tasks either
//   finish or are abandoned before their report write begins.
//
// =============================================================================

package dispatcher

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ginjaninja78/file-processing-engine/internal/logging"
	"github.com/ginjaninja78/file-processing-engine/internal/processor"
	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
)

// DefaultPollInterval is used when no positive interval is configured.
const DefaultPollInterval = 2 * time.Second

// =============================================================================
// COLLABORATORS
// =============================================================================

// Lister discovers eligible input files.
type Lister interface {
	ListEligibleFiles() ([]watcher.File, error)
}

// Destination reports whether the output side can accept work.
type Destination interface {
	Ready() error
}

// FileProcessor processes a single input file.
type FileProcessor interface {
	Process(ctx context.Context, path string) processor.Result
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Dispatcher.
type Options struct {
	// Workers is the size of the worker pool.
	// Default: 2 × runtime.NumCPU()
	Workers int

	// QueueSize is the number of submitted tasks that may wait for a worker.
	// Default: Workers
	QueueSize int

	// PollInterval is the pause between cycles.
	// Default: DefaultPollInterval
	PollInterval time.Duration

	// Logger receives dispatch and failure messages. nil discards them.
	Logger logging.Logger

	// Destination is checked before every cycle. nil skips the check.
	Destination Destination
}

// DefaultWorkers returns the default pool size.
func DefaultWorkers() int {
	return 2 * runtime.NumCPU()
}

func (o *Options) applyDefaults() {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}
	if o.QueueSize <= 0 {
		o.QueueSize = o.Workers
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Stats are lifetime counters of a Dispatcher.
type Stats struct {
	Cycles    int64
	Submitted int64
	Succeeded int64
	Failed    int64

	// Requeued counts tasks released for a later cycle without being
	// recorded as failed.
	Requeued int64
}

// Dispatcher polls a Lister and feeds a worker pool.
type Dispatcher struct {
	lister Lister
	proc   FileProcessor
	opts   Options
	ledger *Ledger
	logger logging.Logger

	cycles    atomic.Int64
	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	requeued  atomic.Int64
}

// New creates a Dispatcher.
func New(lister Lister, proc FileProcessor, opts Options) *Dispatcher {
	opts.applyDefaults()
	return &Dispatcher{
		lister: lister,
		proc:   proc,
		opts:   opts,
		ledger: NewLedger(),
		logger: opts.Logger,
	}
}

// Options returns the effective options after defaults.
func (d *Dispatcher) Options() Options {
	return d.opts
}

// Stats returns a snapshot of the lifetime counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Cycles:    d.cycles.Load(),
		Submitted: d.submitted.Load(),
		Succeeded: d.succeeded.Load(),
		Failed:    d.failed.Load(),
		Requeued:  d.requeued.Load(),
	}
}

// Run polls until ctx ends, then waits for the pool to drain.
// It always returns nil; the loop has no failure of its own.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Dispatcher started: workers=%d interval=%s", d.opts.Workers, d.opts.PollInterval)

	jobs := make(chan watcher.File, d.opts.QueueSize)
	wait := d.startWorkers(ctx, jobs)

	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	for {
		d.poll(ctx, jobs, false)

		select {
		case <-ctx.Done():
			close(jobs)
			wait()
			d.logger.Info("Dispatcher stopped: %+v", d.Stats())
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single cycle and waits for every submitted task.
// Unlike Run, it waits for queue space instead of deferring files.
func (d *Dispatcher) RunOnce(ctx context.Context) Stats {
	before := d.Stats()

	jobs := make(chan watcher.File, d.opts.QueueSize)
	wait := d.startWorkers(ctx, jobs)
	d.poll(ctx, jobs, true)
	close(jobs)
	wait()

	after := d.Stats()
	return Stats{
		Cycles:    after.Cycles - before.Cycles,
		Submitted: after.Submitted - before.Submitted,
		Succeeded: after.Succeeded - before.Succeeded,
		Failed:    after.Failed - before.Failed,
		Requeued:  after.Requeued - before.Requeued,
	}
}

// startWorkers launches the pool and returns a function that waits for it.
// The pool exits once jobs is closed and drained.
func (d *Dispatcher) startWorkers(ctx context.Context, jobs <-chan watcher.File) func() {
	var wg sync.WaitGroup
	for i := 0; i < d.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				d.handle(ctx, job)
			}
		}()
	}
	return wg.Wait
}

// poll runs one discovery cycle and submits new files.
// With block set, it waits for queue space; otherwise a full queue defers
// the remaining files to the next cycle.
func (d *Dispatcher) poll(ctx context.Context, jobs chan<- watcher.File, block bool) {
	d.cycles.Add(1)

	files, err := d.lister.ListEligibleFiles()
	if err != nil {
		d.logger.Error("Skipping cycle (%s): %v", processor.KindDirectoryUnavailable, err)
		return
	}
	d.ledger.Prune(files)

	if d.opts.Destination != nil {
		if err := d.opts.Destination.Ready(); err != nil {
			d.logger.Error("Skipping cycle (%s): %v", processor.KindDirectoryUnavailable, err)
			return
		}
	}

	submitted, deferred := 0, 0
	for _, f := range files {
		if ctx.Err() != nil {
			return
		}
		if !d.ledger.TryAcquire(f) {
			continue
		}

		if block {
			select {
			case jobs <- f:
			case <-ctx.Done():
				d.ledger.Release(f.Path)
				return
			}
		} else {
			select {
			case jobs <- f:
			default:
				d.ledger.Release(f.Path)
				deferred++
				continue
			}
		}

		submitted++
		d.submitted.Add(1)
	}

	if submitted > 0 || deferred > 0 {
		d.logger.Debug("Cycle: found=%d submitted=%d deferred=%d in-flight=%d",
			len(files), submitted, deferred, d.ledger.InFlight())
	}
}

// handle runs one task and records its outcome in the ledger.
func (d *Dispatcher) handle(ctx context.Context, job watcher.File) {
	if ctx.Err() != nil {
		d.ledger.Release(job.Path)
		return
	}

	res := d.proc.Process(ctx, job.Path)

	switch {
	case res.Success():
		d.succeeded.Add(1)
		d.ledger.Release(job.Path)
	case res.Retryable():
		d.requeued.Add(1)
		d.ledger.Release(job.Path)
	default:
		d.failed.Add(1)
		d.ledger.MarkFailed(job)
	}
}
