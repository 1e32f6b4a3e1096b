package dispatcher

import (
	"sync"

	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
)

// version identifies one revision of an input file.
type version struct {
	size    int64
	modTime int64
}

func versionOf(f watcher.File) version {
	return version{size: f.Size, modTime: f.ModTime.UnixNano()}
}

// Ledger tracks which input files are in flight and which have failed.
// A path is never submitted twice while in flight. A failed path is not
// resubmitted until its size or modification time changes.
type Ledger struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	failed   map[string]version
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		inFlight: make(map[string]struct{}),
		failed:   make(map[string]version),
	}
}

// TryAcquire marks f as in flight. It returns false if f is already in
// flight or is a known failure that has not changed since.
func (l *Ledger) TryAcquire(f watcher.File) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.inFlight[f.Path]; busy {
		return false
	}
	if v, failed := l.failed[f.Path]; failed {
		if v == versionOf(f) {
			return false
		}
		delete(l.failed, f.Path)
	}

	l.inFlight[f.Path] = struct{}{}
	return true
}

// Release removes path from the in-flight set.
func (l *Ledger) Release(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, path)
}

// MarkFailed releases f and remembers its current version as failed.
func (l *Ledger) MarkFailed(f watcher.File) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, f.Path)
	l.failed[f.Path] = versionOf(f)
}

// IsFailed reports whether path is remembered as failed.
func (l *Ledger) IsFailed(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.failed[path]
	return ok
}

// InFlight returns the number of paths currently in flight.
func (l *Ledger) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inFlight)
}

// Prune forgets failures for paths that are no longer present.
func (l *Ledger) Prune(present []watcher.File) {
	keep := make(map[string]struct{}, len(present))
	for _, f := range present {
		keep[f.Path] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for path := range l.failed {
		if _, ok := keep[path]; !ok {
			delete(l.failed, path)
		}
	}
}
