package tui

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeventeLantos/message-blast/internal/client"
	"github.com/LeventeLantos/message-blast/internal/link"
	"github.com/LeventeLantos/message-blast/internal/model"
	"github.com/LeventeLantos/message-blast/internal/scheduler"
	"github.com/LeventeLantos/message-blast/internal/service"
)

func newModel(t *testing.T) (Model, *bytes.Buffer) {
	t.Helper()

	links, err := link.NewBuilder(link.FormRecipient, "")
	require.NoError(t, err)

	opened := &bytes.Buffer{}
	noWait := scheduler.PacerFunc(func(ctx context.Context, d time.Duration) error { return ctx.Err() })
	orch := service.New(links, client.NewDryRun(opened), service.WithPacer(noWait))

	s := service.NewSession(orch, nil)
	s.SetContacts([]model.Contact{
		{ID: "1", Name: "Alice", Phone: "111"},
		{ID: "2", Name: "Bob", Phone: "222"},
	})
	s.SetTemplate("Hi {{name}}")

	sched := scheduler.New(zerolog.Nop())
	t.Cleanup(func() { sched.Stop() })

	return New(context.Background(), s, sched), opened
}

// exec runs cmd synchronously and feeds its message back into the model.
func exec(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_InitStartsBatch(t *testing.T) {
	m, _ := newModel(t)

	m = exec(t, m, m.Init())

	require.NotNil(t, m.batch)
	require.Len(t, m.entries, 2)
	assert.Equal(t, model.Queued, m.entries[0].Status)
	assert.Contains(t, m.View(), "0 / 2 (0%)")
}

func TestModel_AdvanceSelected(t *testing.T) {
	m, opened := newModel(t)
	m = exec(t, m, m.Init())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = exec(t, m, cmd)

	assert.Equal(t, model.Queued, m.entries[0].Status)
	assert.Equal(t, model.Sent, m.entries[1].Status)
	assert.Contains(t, opened.String(), "text=Hi%20Bob")

	view := m.View()
	assert.Contains(t, view, "Actioned")
	assert.Contains(t, view, "1 / 2 (50%)")
}

func TestModel_IgnoresStaleEntries(t *testing.T) {
	m, _ := newModel(t)
	m = exec(t, m, m.Init())

	sent := m.entries[0]
	sent.Status = model.Sent
	next, _ := m.Update(EntryMsg{BatchID: m.batch.ID, Entry: sent})
	m = next.(Model)

	sending := sent
	sending.Status = model.Sending
	next, _ = m.Update(EntryMsg{BatchID: m.batch.ID, Entry: sending})
	m = next.(Model)
	assert.Equal(t, model.Sent, m.entries[0].Status)

	other := m.entries[1]
	other.Status = model.Sent
	next, _ = m.Update(EntryMsg{BatchID: "another-batch", Entry: other})
	m = next.(Model)
	assert.Equal(t, model.Queued, m.entries[1].Status)
}

func TestModel_RunAll(t *testing.T) {
	m, opened := newModel(t)
	m = exec(t, m, m.Init())

	m, cmd := press(t, m, runes("a"))
	m = exec(t, m, cmd)

	assert.Equal(t, "run complete", m.status)
	for _, e := range m.entries {
		assert.Equal(t, model.Sent, e.Status)
	}
	assert.Equal(t, 2, bytes.Count(opened.Bytes(), []byte("\n")))
}

func TestModel_RetryFailed(t *testing.T) {
	m, _ := newModel(t)
	m = exec(t, m, m.Init())

	_, cmd := press(t, m, runes("f"))
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, "no failed contacts to retry", m.status)

	first := m.batch.ID
	m, cmd = press(t, m, runes("r"))
	m = exec(t, m, cmd)
	assert.NotEqual(t, first, m.batch.ID)
	assert.Len(t, m.entries, 2)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModel(t)

	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestRelay_WithoutProgram(t *testing.T) {
	var r Relay
	assert.NotPanics(t, func() {
		r.Observe("b", model.LogEntry{})
	})
}
