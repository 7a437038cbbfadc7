package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LeventeLantos/message-blast/internal/model"
)

// EntryMsg reports a ledger change for one contact.
type EntryMsg struct {
	BatchID string
	Entry   model.LogEntry
}

// Relay forwards orchestrator notifications to a running program. The
// orchestrator is built before the program exists, so the program is
// attached later.
type Relay struct {
	mu sync.RWMutex
	p  *tea.Program
}

func (r *Relay) Attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

// Observe never blocks: the orchestrator calls it with its lock held, while
// the program loop may be waiting on that same lock.
func (r *Relay) Observe(batchID string, e model.LogEntry) {
	r.mu.RLock()
	p := r.p
	r.mu.RUnlock()
	if p == nil {
		return
	}
	go p.Send(EntryMsg{BatchID: batchID, Entry: e})
}
