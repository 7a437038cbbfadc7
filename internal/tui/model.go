// Package tui is a terminal front end for one sending session. It shows the
// batch ledger with a progress bar; contacts can be actioned one at a time or
// in an autonomous run.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LeventeLantos/message-blast/internal/model"
	prog "github.com/LeventeLantos/message-blast/internal/progress"
	"github.com/LeventeLantos/message-blast/internal/scheduler"
	"github.com/LeventeLantos/message-blast/internal/service"
)

type (
	batchStartedMsg struct {
		batch *service.Batch
		err   error
	}
	advancedMsg struct {
		entry model.LogEntry
		err   error
	}
	runFinishedMsg struct{ err error }
	noticeMsg      string
)

type Model struct {
	ctx     context.Context
	session *service.Session
	sched   *scheduler.Scheduler

	styles styles
	bar    progress.Model

	batch   *service.Batch
	entries []model.LogEntry
	index   map[string]int
	cursor  int
	status  string
}

func New(ctx context.Context, s *service.Session, sched *scheduler.Scheduler) Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return Model{
		ctx:     ctx,
		session: s,
		sched:   sched,
		styles:  defaultStyles(),
		bar:     bar,
	}
}

// Init starts a batch from the session inputs.
func (m Model) Init() tea.Cmd {
	return m.restart(false)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-24, 10), 80)

	case batchStartedMsg:
		if msg.err != nil {
			m.status = "cannot start batch: " + msg.err.Error()
			return m, nil
		}
		m.load(msg.batch)
		m.status = fmt.Sprintf("batch %s started", shortID(msg.batch.ID))

	case EntryMsg:
		if m.batch != nil && msg.BatchID == m.batch.ID {
			m.apply(msg.Entry)
		}

	case advancedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.apply(msg.entry)
		if msg.entry.Status == model.Failed {
			m.status = fmt.Sprintf("%s failed: %s", msg.entry.Contact.Name, msg.entry.Reason)
		}

	case runFinishedMsg:
		if m.batch != nil {
			m.load(m.batch)
		}
		switch {
		case errors.Is(msg.err, context.Canceled):
			m.status = "run stopped"
		case msg.err != nil:
			m.status = "run failed: " + msg.err.Error()
		default:
			m.status = "run complete"
		}

	case noticeMsg:
		m.status = string(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.sched.Stop()
		return m, tea.Quit
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "j", "down":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor < len(m.entries) {
			return m, m.advance(m.entries[m.cursor].Contact.ID)
		}
	case "a":
		if m.batch != nil {
			m.status = "running..."
			return m, m.run(m.batch)
		}
	case "s":
		return m, m.stop()
	case "r":
		return m, m.restart(false)
	case "f":
		return m, m.restart(true)
	}
	return m, nil
}

func (m *Model) load(b *service.Batch) {
	m.batch = b
	m.entries = b.Entries()
	m.index = make(map[string]int, len(m.entries))
	for i, e := range m.entries {
		m.index[e.Contact.ID] = i
	}
	if m.cursor >= len(m.entries) {
		m.cursor = 0
	}
}

// apply keeps the newest state per contact. Notifications can arrive out of
// order, so a lower ranked status never replaces a higher one.
func (m *Model) apply(e model.LogEntry) {
	i, ok := m.index[e.Contact.ID]
	if !ok {
		return
	}
	if e.Status.Rank() < m.entries[i].Status.Rank() {
		return
	}
	m.entries[i] = e
}

func (m Model) advance(id string) tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		e, err := s.Advance(ctx, id)
		return advancedMsg{entry: e, err: err}
	}
}

func (m Model) run(b *service.Batch) tea.Cmd {
	ctx, sched, orch := m.ctx, m.sched, m.session.Orchestrator()
	return func() tea.Msg {
		started, err := sched.Start(ctx, func(ctx context.Context) error {
			return orch.Run(ctx, b)
		})
		if err != nil {
			return runFinishedMsg{err: err}
		}
		if !started {
			return noticeMsg("a run is already in progress")
		}
		return runFinishedMsg{err: sched.Wait()}
	}
}

func (m Model) stop() tea.Cmd {
	sched := m.sched
	return func() tea.Msg {
		if !sched.Stop() {
			return noticeMsg("nothing is running")
		}
		return nil
	}
}

// restart drops the live batch, if any, and starts a new one. With
// retryFailed the new batch holds only the contacts that failed.
func (m Model) restart(retryFailed bool) tea.Cmd {
	s, sched := m.session, m.sched
	return func() tea.Msg {
		sched.Stop()
		orch := s.Orchestrator()
		b := orch.Active()

		if retryFailed {
			if b == nil {
				return noticeMsg("no batch to retry")
			}
			failed := orch.FailedContacts(b)
			if len(failed) == 0 {
				return noticeMsg("no failed contacts to retry")
			}
			if err := orch.Reset(b); err != nil {
				return batchStartedMsg{err: err}
			}
			nb, err := orch.StartBatch(failed, b.Template, b.Media)
			return batchStartedMsg{batch: nb, err: err}
		}

		if b != nil {
			if err := orch.Reset(b); err != nil {
				return batchStartedMsg{err: err}
			}
		}
		nb, err := s.Start()
		return batchStartedMsg{batch: nb, err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	title := m.styles.Header.Render("message-blast")
	if m.batch == nil {
		sb.WriteString(title + "\n\n")
		sb.WriteString(m.styles.Muted.Render("No active batch. Press r to start one.") + "\n")
		m.writeFooter(&sb)
		return sb.String()
	}

	p := prog.Project(m.entries)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", m.styles.Muted.Render("batch "+shortID(m.batch.ID))))
	sb.WriteString("\n\n")
	sb.WriteString(m.bar.ViewAs(p.Percent/100) + "  " + p.String())
	if p.Failed > 0 {
		sb.WriteString(m.styles.Error.Render(fmt.Sprintf("  %d failed", p.Failed)))
	}
	sb.WriteString("\n\n")

	for i, e := range m.entries {
		cursor := "  "
		name := fmt.Sprintf("%-24s", e.Contact.Name)
		if i == m.cursor {
			cursor = "> "
			name = m.styles.Selected.Render(name)
		}
		fmt.Fprintf(&sb, "%s%s %-16s %s\n", cursor, name, e.Contact.Phone, m.styles.badge(e.Status))

		switch {
		case e.Reason != "":
			sb.WriteString("    " + m.styles.Error.Render(e.Reason) + "\n")
		case e.Notice != "":
			sb.WriteString("    " + m.styles.Muted.Render(e.Notice) + "\n")
		}
	}

	m.writeFooter(&sb)
	return sb.String()
}

func (m Model) writeFooter(sb *strings.Builder) {
	sb.WriteString("\n")
	if m.status != "" {
		sb.WriteString(m.status + "\n")
	}
	sb.WriteString(m.styles.Muted.Render("[enter] send  [a] run all  [s] stop  [r] new batch  [f] retry failed  [q] quit"))
	sb.WriteString("\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
