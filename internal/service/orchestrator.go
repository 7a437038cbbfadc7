package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LeventeLantos/message-blast/internal/client"
	"github.com/LeventeLantos/message-blast/internal/handoff"
	"github.com/LeventeLantos/message-blast/internal/link"
	"github.com/LeventeLantos/message-blast/internal/model"
	"github.com/LeventeLantos/message-blast/internal/scheduler"
	"github.com/LeventeLantos/message-blast/internal/template"
)

const DefaultPacing = 2 * time.Second

// Observer is called synchronously after every status transition. It must
// not call back into the Orchestrator.
type Observer func(batchID string, entry model.LogEntry)

// Orchestrator walks a batch of contacts, opening one chat link per contact.
// A "sent" entry means the link was opened; nothing confirms delivery.
type Orchestrator struct {
	links   *link.Builder
	opener  client.Opener
	handoff *handoff.Handoff
	pacer   scheduler.Pacer
	pacing  time.Duration
	now     func() time.Time
	log     zerolog.Logger
	observe []Observer

	// mu serializes contact processing. active is read without it so
	// readers never wait behind an open in flight.
	mu     sync.Mutex
	active atomic.Pointer[Batch]
}

type Option func(*Orchestrator)

func WithHandoff(h *handoff.Handoff) Option {
	return func(o *Orchestrator) { o.handoff = h }
}

func WithPacer(p scheduler.Pacer) Option {
	return func(o *Orchestrator) { o.pacer = p }
}

func WithPacing(d time.Duration) Option {
	return func(o *Orchestrator) { o.pacing = d }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observe = append(o.observe, fn) }
}

func New(links *link.Builder, opener client.Opener, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		links:  links,
		opener: opener,
		pacer:  scheduler.TimerPacer{},
		pacing: DefaultPacing,
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.handoff == nil {
		o.handoff = handoff.New(nil, o.log)
	}
	return o
}

func (o *Orchestrator) Pacing() time.Duration { return o.pacing }

// Active returns the live batch or nil.
func (o *Orchestrator) Active() *Batch {
	return o.active.Load()
}

// StartBatch snapshots tmpl and media and queues one entry per contact in
// input order.
func (o *Orchestrator) StartBatch(contacts []model.Contact, tmpl string, media *model.Media) (*Batch, error) {
	if len(contacts) == 0 {
		return nil, fmt.Errorf("%w: contact list is empty", ErrInvalidInput)
	}
	if template.IsBlank(tmpl) {
		return nil, fmt.Errorf("%w: message template is empty", ErrInvalidInput)
	}

	now := o.now()
	entries := make([]model.LogEntry, len(contacts))
	index := make(map[string]int, len(contacts))
	for i, c := range contacts {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: contact at position %d has no id", ErrInvalidInput, i)
		}
		if _, dup := index[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate contact id %q", ErrInvalidInput, c.ID)
		}
		index[c.ID] = i
		entries[i] = model.LogEntry{
			Contact:   c,
			Status:    model.Queued,
			UpdatedAt: now,
		}
	}

	b := &Batch{
		ID:        uuid.NewString(),
		Template:  tmpl,
		Media:     media,
		StartedAt: now,
		entries:   entries,
		index:     index,
	}
	if !o.active.CompareAndSwap(nil, b) {
		return nil, ErrBatchAlreadyActive
	}

	o.log.Info().
		Str("batch", b.ID).
		Int("contacts", len(entries)).
		Bool("media", media != nil).
		Msg("batch started")
	return b, nil
}

// Advance processes one contact on demand, in any order. Calling it again
// for a contact that is already sent or failed returns the entry unchanged
// and opens nothing.
func (o *Orchestrator) Advance(ctx context.Context, b *Batch, contactID string) (model.LogEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkActive(b); err != nil {
		return model.LogEntry{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.LogEntry{}, err
	}

	b.mu.RLock()
	i, ok := b.index[contactID]
	b.mu.RUnlock()
	if !ok {
		return model.LogEntry{}, fmt.Errorf("%w: %q", ErrUnknownContact, contactID)
	}

	if e := b.at(i); e.Status != model.Queued {
		return e, nil
	}
	return o.process(ctx, b, i), nil
}

// Run processes the remaining queued contacts in input order, waiting the
// pacing interval between two opens. Canceling ctx stops the run before the
// next open; entries not reached stay queued.
func (o *Orchestrator) Run(ctx context.Context, b *Batch) error {
	if err := o.checkActive(b); err != nil {
		return err
	}
	if !b.running.CompareAndSwap(false, true) {
		return ErrBatchRunning
	}
	defer b.running.Store(false)

	o.log.Info().Str("batch", b.ID).Dur("pacing", o.pacing).Msg("autonomous run started")

	for {
		if err := ctx.Err(); err != nil {
			o.log.Info().Str("batch", b.ID).Msg("autonomous run canceled")
			return err
		}

		i, err := o.step(ctx, b)
		if err != nil {
			return err
		}
		if i < 0 || !b.hasQueuedAfter(i) {
			o.log.Info().Str("batch", b.ID).Msg("autonomous run complete")
			return nil
		}

		if err := o.pacer.Wait(ctx, o.pacing); err != nil {
			o.log.Info().Str("batch", b.ID).Err(err).Msg("autonomous run canceled")
			return err
		}
	}
}

// step processes the next queued entry and returns its index, or -1 when
// nothing is left.
func (o *Orchestrator) step(ctx context.Context, b *Batch) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkActive(b); err != nil {
		return -1, err
	}
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	i := b.nextQueued()
	if i < 0 {
		return -1, nil
	}
	o.process(ctx, b, i)
	return i, nil
}

// Reset discards the live batch. Session inputs are not touched. It does
// not wait for a contact being processed: that contact finishes on the
// detached batch and a run stops at its next step.
func (o *Orchestrator) Reset(b *Batch) error {
	if b == nil || !o.active.CompareAndSwap(b, nil) {
		return ErrBatchNotActive
	}
	o.log.Info().Str("batch", b.ID).Msg("batch reset")
	return nil
}

// FailedContacts lists the contacts whose entry failed, in input order. A
// failed entry never goes back to queued; retrying means starting a new
// batch with these contacts.
func (o *Orchestrator) FailedContacts(b *Batch) []model.Contact {
	var out []model.Contact
	for _, e := range b.Entries() {
		if e.Status == model.Failed {
			out = append(out, e.Contact)
		}
	}
	return out
}

func (o *Orchestrator) checkActive(b *Batch) error {
	if b == nil || o.active.Load() != b {
		return ErrBatchNotActive
	}
	return nil
}

// process drives entry i from queued to a terminal status. Callers hold o.mu.
// Once started, the open is not interrupted by cancellation of ctx.
func (o *Orchestrator) process(ctx context.Context, b *Batch, i int) model.LogEntry {
	ctx = context.WithoutCancel(ctx)

	o.transition(b, i, func(e *model.LogEntry) {
		e.Status = model.Sending
	})

	entry := b.at(i)
	log := o.log.With().Str("batch", b.ID).Str("contact", entry.Contact.ID).Logger()

	uri, err := o.compose(b.Template, entry.Contact)
	if err != nil {
		log.Warn().Err(err).Msg("contact failed")
		return o.fail(b, i, err)
	}

	var notices []string
	phone := link.NormalizePhone(entry.Contact.Phone)
	switch {
	case phone == "":
		notices = append(notices, "phone number has no digits")
		log.Warn().Str("phone", entry.Contact.Phone).Msg("phone number has no digits")
	case !link.Plausible(phone):
		log.Debug().Str("phone", phone).Msg("phone number does not look like an international number")
	}

	if b.Media != nil {
		if outcome, err := o.handoff.Stage(ctx, b.Media); outcome != handoff.Staged {
			notices = append(notices, attachmentNotice(outcome, err))
		}
	}

	if err := o.opener.Open(ctx, uri); err != nil {
		log.Warn().Err(err).Msg("open link failed")
		return o.fail(b, i, fmt.Errorf("open link: %w", err))
	}

	log.Info().Msg("contact actioned")
	return o.transition(b, i, func(e *model.LogEntry) {
		e.Status = model.Sent
		e.Link = uri
		e.Notice = strings.Join(notices, "; ")
	})
}

func (o *Orchestrator) compose(tmpl string, c model.Contact) (string, error) {
	if !utf8.ValidString(c.Name) || !utf8.ValidString(c.Phone) {
		return "", errors.New("contact data is not valid UTF-8")
	}
	text := template.Render(tmpl, c)
	return o.links.Build(link.NormalizePhone(c.Phone), text), nil
}

func (o *Orchestrator) fail(b *Batch, i int, err error) model.LogEntry {
	return o.transition(b, i, func(e *model.LogEntry) {
		e.Status = model.Failed
		e.Reason = err.Error()
	})
}

func (o *Orchestrator) transition(b *Batch, i int, fn func(*model.LogEntry)) model.LogEntry {
	now := o.now()
	entry, ok := b.update(i, func(e *model.LogEntry) {
		fn(e)
		e.UpdatedAt = now
	})
	if !ok {
		o.log.Error().Str("batch", b.ID).Str("contact", entry.Contact.ID).
			Str("status", string(entry.Status)).Msg("backward transition refused")
		return entry
	}
	for _, obs := range o.observe {
		obs(b.ID, entry)
	}
	return entry
}

func attachmentNotice(outcome handoff.Outcome, err error) string {
	msg := "attachment " + string(outcome)
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg + ", attach it manually"
}
