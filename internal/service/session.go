package service

import (
	"context"
	"sync"

	"github.com/LeventeLantos/message-blast/internal/model"
)

// MediaReleaser frees resources derived from a media value, such as staged
// clipboard files.
type MediaReleaser interface {
	Release(m *model.Media) error
}

// Session is the state one user works with: the loaded contacts, the
// template being composed and the optional attachment, plus the
// orchestrator that owns the live batch.
type Session struct {
	orch     *Orchestrator
	releaser MediaReleaser

	mu       sync.RWMutex
	contacts []model.Contact
	template string
	media    *model.Media
}

func NewSession(orch *Orchestrator, releaser MediaReleaser) *Session {
	return &Session{orch: orch, releaser: releaser}
}

func (s *Session) Orchestrator() *Orchestrator { return s.orch }

func (s *Session) SetContacts(contacts []model.Contact) {
	cp := make([]model.Contact, len(contacts))
	copy(cp, contacts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = cp
}

func (s *Session) Contacts() []model.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]model.Contact, len(s.contacts))
	copy(cp, s.contacts)
	return cp
}

func (s *Session) SetTemplate(tmpl string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = tmpl
}

func (s *Session) Template() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// SetMedia replaces the attachment, releasing the previous one.
func (s *Session) SetMedia(m *model.Media) error {
	s.mu.Lock()
	prev := s.media
	s.media = m
	s.mu.Unlock()

	return s.release(prev)
}

func (s *Session) ClearMedia() error {
	return s.SetMedia(nil)
}

func (s *Session) Media() *model.Media {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.media
}

// Start begins a batch from the current inputs. Later edits to the session
// do not affect it.
func (s *Session) Start() (*Batch, error) {
	s.mu.RLock()
	contacts, tmpl, media := s.contacts, s.template, s.media
	s.mu.RUnlock()

	return s.orch.StartBatch(contacts, tmpl, media)
}

func (s *Session) Active() *Batch {
	return s.orch.Active()
}

// Advance acts on one contact of the live batch.
func (s *Session) Advance(ctx context.Context, contactID string) (model.LogEntry, error) {
	return s.orch.Advance(ctx, s.orch.Active(), contactID)
}

// Reset drops the live batch. Contacts, template and media are kept so a new
// batch can start right away.
func (s *Session) Reset() error {
	return s.orch.Reset(s.orch.Active())
}

func (s *Session) release(m *model.Media) error {
	if m == nil || s.releaser == nil {
		return nil
	}
	// A live batch still holding m stages it again on its next send.
	return s.releaser.Release(m)
}
