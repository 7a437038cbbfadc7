package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeventeLantos/message-blast/internal/model"
)

// Batch is the ledger of one send run. Only the Orchestrator mutates it;
// readers go through the accessor methods.
type Batch struct {
	ID        string
	Template  string
	Media     *model.Media
	StartedAt time.Time

	mu      sync.RWMutex
	entries []model.LogEntry
	index   map[string]int
	// cursor is the next position the autonomous run looks at.
	cursor int

	running atomic.Bool
}

func (b *Batch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Entries returns a copy of the ledger in input order.
func (b *Batch) Entries() []model.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Batch) Entry(contactID string) (model.LogEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i, ok := b.index[contactID]
	if !ok {
		return model.LogEntry{}, false
	}
	return b.entries[i], true
}

// Complete reports whether every entry reached a terminal status.
func (b *Batch) Complete() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, e := range b.entries {
		if !e.Status.Terminal() {
			return false
		}
	}
	return true
}

// Running reports whether an autonomous run currently owns the batch.
func (b *Batch) Running() bool {
	return b.running.Load()
}

// nextQueued moves the cursor past terminal entries and returns the index of
// the next queued one, or -1.
func (b *Batch) nextQueued() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.cursor < len(b.entries) {
		if b.entries[b.cursor].Status == model.Queued {
			return b.cursor
		}
		b.cursor++
	}
	return -1
}

func (b *Batch) hasQueuedAfter(i int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for j := i + 1; j < len(b.entries); j++ {
		if b.entries[j].Status == model.Queued {
			return true
		}
	}
	return false
}

func (b *Batch) at(i int) model.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.entries[i]
}

// update applies fn to entry i if the resulting status is a forward move.
func (b *Batch) update(i int, fn func(*model.LogEntry)) (model.LogEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.entries[i]
	fn(&next)
	if next.Status != b.entries[i].Status && !b.entries[i].Status.CanMoveTo(next.Status) {
		return b.entries[i], false
	}
	b.entries[i] = next
	return next, true
}
