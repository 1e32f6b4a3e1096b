package dispatcher

import (
	"testing"
	"time"

	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
	"github.com/stretchr/testify/assert"
)

func TestLedger(t *testing.T) {
	l := NewLedger()
	a := watcher.File{Path: "/in/a.txt", Size: 1, ModTime: time.Unix(1, 0)}

	assert.True(t, l.TryAcquire(a))
	assert.False(t, l.TryAcquire(a), "in flight")
	assert.Equal(t, 1, l.InFlight())

	l.MarkFailed(a)
	assert.Equal(t, 0, l.InFlight())
	assert.True(t, l.IsFailed(a.Path))
	assert.False(t, l.TryAcquire(a), "unchanged failure")

	grown := a
	grown.Size = 2
	assert.True(t, l.TryAcquire(grown), "changed file is eligible again")
	assert.False(t, l.IsFailed(a.Path))

	l.Release(a.Path)
	assert.Equal(t, 0, l.InFlight())
}

func TestLedger_Prune(t *testing.T) {
	l := NewLedger()
	a := watcher.File{Path: "/in/a.txt"}
	b := watcher.File{Path: "/in/b.txt"}

	l.MarkFailed(a)
	l.MarkFailed(b)
	l.Prune([]watcher.File{b})

	assert.False(t, l.IsFailed(a.Path))
	assert.True(t, l.IsFailed(b.Path))
}
