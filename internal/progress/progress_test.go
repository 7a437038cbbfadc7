package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LeventeLantos/message-blast/internal/model"
)

func entries(statuses ...model.Status) []model.LogEntry {
	out := make([]model.LogEntry, len(statuses))
	for i, s := range statuses {
		out[i] = model.LogEntry{Status: s}
	}
	return out
}

func TestProject_TwoOfFive(t *testing.T) {
	t.Parallel()

	p := Project(entries(model.Sent, model.Queued, model.Sent, model.Queued, model.Queued))

	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 5, p.Total)
	assert.InDelta(t, 40.0, p.Percent, 1e-9)
	assert.False(t, p.Done)
	assert.Equal(t, "2 / 5 (40%)", p.String())
}

func TestProject_Empty(t *testing.T) {
	t.Parallel()

	p := Project(nil)
	assert.Equal(t, 0, p.Total)
	assert.Zero(t, p.Percent)
	assert.True(t, p.Done)
}

func TestProject_FailedIsTerminalButNotCompleted(t *testing.T) {
	t.Parallel()

	p := Project(entries(model.Sent, model.Failed, model.Sending))
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 1, p.Failed)
	assert.Equal(t, 1, p.Pending)
	assert.False(t, p.Done)

	p = Project(entries(model.Sent, model.Failed, model.Sent))
	assert.True(t, p.Done)
	assert.InDelta(t, 66.666, p.Percent, 0.01)
	assert.Equal(t, "2 / 3 (67%)", p.String())
}
