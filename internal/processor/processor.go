// =============================================================================
// File Processing Engine - File Task Processor
// =============================================================================
//
// This module processes a single input file from start to finish. It is the
// per-file unit of work submitted to the dispatcher's worker pool.
//
// PROCESSING PIPELINE:
//   1. Open the input file (BOM-aware UTF-8 decoding)
//   2. Stream it line by line, parsing and folding each record into totals
//   3. Finalize the summary at end of file
//   4. Write the report to the destination directory
//   5. Delete the input file
//
// STATE MACHINE:
//   Discovered -> Reading -> Aggregating -> Writing -> Deleted
//   Reading covers opening the input; Aggregating covers the line scan.
//   Any failure moves the task to Failed. The input file is deleted only after
//   the report write has returned successfully; on failure the input is left
//   untouched and no report file is visible. If the input cannot be deleted,
//   the report just written is removed again.
//
// CONCURRENCY:
//   A Processor is shared by all workers. Each call to Process owns its own
//   totals; the only shared state is the atomic processed-files counter.
//
// =============================================================================

package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ginjaninja78/file-processing-engine/internal/logging"
	"github.com/ginjaninja78/file-processing-engine/internal/recordparser"
	"github.com/ginjaninja78/file-processing-engine/internal/sales"
	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
	"github.com/ginjaninja78/file-processing-engine/pkg/utils"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// TASK STATES
// =============================================================================

// State is the lifecycle position of a file task.
type State int

const (
	StateDiscovered State = iota
	StateReading
	StateAggregating
	StateWriting
	StateDeleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateReading:
		return "reading"
	case StateAggregating:
		return "aggregating"
	case StateWriting:
		return "writing"
	case StateDeleted:
		return "deleted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDeleted || s == StateFailed
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// TaskID correlates the log lines of one task.
	TaskID string

	// FilePath is the input file that was processed.
	FilePath string

	// OutputFile is the written report. Empty if the write did not happen.
	OutputFile string

	// State is the terminal state reached.
	State State

	// FailedIn is the state in which the failure happened. Only set when
	// State is StateFailed.
	FailedIn State

	// Summary is the aggregated summary. Valid once Writing was reached.
	Summary sales.Summary

	// Error is the failure cause, nil on success.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// Success reports whether the file was processed and deleted.
func (r Result) Success() bool {
	return r.State == StateDeleted
}

// Abandoned reports whether the task stopped because its context ended.
// Abandoned tasks leave their input untouched, like failures, but are not
// the file's fault.
func (r Result) Abandoned() bool {
	return r.State == StateFailed &&
		(errors.Is(r.Error, context.Canceled) || errors.Is(r.Error, context.DeadlineExceeded))
}

// Retryable reports whether the failure is not the file's fault: the task
// was abandoned, or a directory was unavailable. The same file may be
// submitted again unchanged.
func (r Result) Retryable() bool {
	return r.Abandoned() ||
		(r.State == StateFailed && errors.Is(r.Error, watcher.ErrDirectoryUnavailable))
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Lines is the number of lines read.
	Lines int

	// Skipped is the number of unrecognized lines.
	Skipped int

	// Sales is the number of sale lines folded into the totals.
	Sales int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// PROCESSOR
// =============================================================================

// ReportWriter persists a summary for an input file.
type ReportWriter interface {
	Write(inputName string, s sales.Summary) (string, error)
}

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Processor runs the file pipeline.
type Processor struct {
	files     *utils.FileManager
	reports   ReportWriter
	logger    logging.Logger
	processed atomic.Int64
}

// New creates a Processor.
//
// PARAMETERS:
//   - files: Filesystem access for reading and deleting inputs.
//   - reports: Where summaries are written.
//   - logger: The logging sink. nil discards logs.
func New(files *utils.FileManager, reports ReportWriter, logger logging.Logger) *Processor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Processor{
		files:   files,
		reports: reports,
		logger:  logger,
	}
}

// Processed returns the number of files processed successfully since the
// Processor was created.
func (p *Processor) Processed() int64 {
	return p.processed.Load()
}

// Process runs the pipeline for one input file.
//
// PARAMETERS:
//   - ctx: Cancellation is honoured until the report write begins. A task
//     that has started writing always runs to completion.
//   - path: The input file.
//
// RETURNS:
//   - A Result in a terminal state.
func (p *Processor) Process(ctx context.Context, path string) Result {
	start := time.Now()
	result := Result{
		TaskID:   uuid.NewString(),
		FilePath: path,
		State:    StateDiscovered,
	}

	fail := func(err error) Result {
		result.FailedIn = result.State
		result.State = StateFailed
		result.Error = err
		result.Stats.ProcessingTime = time.Since(start)
		switch {
		case result.Abandoned():
			p.logger.Warn("[%s] abandoned %s: %v", result.TaskID, path, err)
		case result.Retryable():
			p.logger.Warn("[%s] deferred %s (%s): %v", result.TaskID, path, ErrorKind(err), err)
		default:
			p.logger.Error("[%s] failed to process %s (%s, during %s): %v",
				result.TaskID, path, ErrorKind(err), result.FailedIn, err)
		}
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	p.logger.Info("[%s] Processing file: %s", result.TaskID, path)

	// =========================================================================
	// READING / AGGREGATING
	// =========================================================================

	result.State = StateReading
	totals, err := p.scan(ctx, path, &result)
	if err != nil {
		return fail(err)
	}

	result.Summary = totals.Summarize()
	p.logger.Debug("[%s] %s: lines=%d skipped=%d sales=%d clients=%d sellers=%d",
		result.TaskID, path, result.Stats.Lines, result.Stats.Skipped, result.Stats.Sales,
		result.Summary.ClientCount, result.Summary.SellerCount)

	// =========================================================================
	// WRITING
	// =========================================================================

	result.State = StateWriting
	outputPath, err := p.reports.Write(filepath.Base(path), result.Summary)
	if err != nil {
		return fail(err)
	}
	result.OutputFile = outputPath

	// =========================================================================
	// DELETING
	// =========================================================================

	if err := p.files.Remove(path); err != nil {
		if rerr := p.files.Remove(outputPath); rerr != nil {
			p.logger.Error("[%s] report %s left behind for undeleted input: %v", result.TaskID, outputPath, rerr)
		} else {
			result.OutputFile = ""
		}
		return fail(&DeleteError{Path: path, Err: err})
	}

	result.State = StateDeleted
	result.Stats.ProcessingTime = time.Since(start)

	total := p.processed.Add(1)
	p.logger.Info("[%s] File %s processed and deleted, report %s (%s)",
		result.TaskID, path, outputPath, result.Stats.ProcessingTime)
	p.logger.Info("Total files processed: %d", total)

	return result
}

// scan streams the file and folds every line into fresh totals.
func (p *Processor) scan(ctx context.Context, path string, result *Result) (*sales.Totals, error) {
	f, err := p.files.Fs().Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	// BOMOverride strips a UTF-8 BOM (and decodes UTF-16 with a BOM);
	// without one the bytes pass through as UTF-8.
	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	sc := bufio.NewScanner(decoded)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	result.State = StateAggregating
	totals := sales.NewTotals()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Stats.Lines++
		rec, err := recordparser.ParseLine(sc.Text())
		if err != nil {
			var me *recordparser.MalformedRecordError
			if errors.As(err, &me) {
				me.Line = result.Stats.Lines
			}
			return nil, err
		}

		switch rec.Kind {
		case recordparser.KindUnrecognized:
			result.Stats.Skipped++
			continue
		case recordparser.KindSaleBatch:
			result.Stats.Sales++
			revenue, items := sales.BatchTotals(*rec.Sale)
			p.logger.Debug("[%s] sale %s by %s: revenue=%s items=%d",
				result.TaskID, rec.Sale.SaleID, rec.Sale.SellerName, revenue, items)
		}
		totals.Add(rec)
	}
	if err := sc.Err(); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	return totals, nil
}
