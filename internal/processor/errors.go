package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ginjaninja78/file-processing-engine/internal/recordparser"
	"github.com/ginjaninja78/file-processing-engine/internal/report"
	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
)

var (
	// ErrReadFailure means the input file could not be opened or read.
	ErrReadFailure = errors.New("read failure")

	// ErrDeleteFailure means the report was written but the input could not
	// be removed.
	ErrDeleteFailure = errors.New("delete failure")
)

// ReadError wraps a failure to open or read an input file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() []error {
	return []error{ErrReadFailure, e.Err}
}

// DeleteError wraps a failure to remove a processed input file.
type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() []error {
	return []error{ErrDeleteFailure, e.Err}
}

// Error kind names used in logs.
const (
	KindMalformedRecord      = "malformed_record"
	KindWriteFailure         = "write_failure"
	KindDirectoryUnavailable = "directory_unavailable"
	KindReadFailure          = "read_failure"
	KindDeleteFailure        = "delete_failure"
	KindCanceled             = "canceled"
	KindUnknown              = "unknown"
)

// ErrorKind classifies an error returned by Process.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, recordparser.ErrMalformedRecord):
		return KindMalformedRecord
	case errors.Is(err, watcher.ErrDirectoryUnavailable):
		return KindDirectoryUnavailable
	case errors.Is(err, report.ErrWriteFailure):
		return KindWriteFailure
	case errors.Is(err, ErrReadFailure):
		return KindReadFailure
	case errors.Is(err, ErrDeleteFailure):
		return KindDeleteFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}
