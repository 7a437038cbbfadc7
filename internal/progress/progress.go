// Package progress derives display counters from a batch ledger. Nothing is
// cached: every call recounts the entries.
package progress

import (
	"fmt"
	"math"

	"github.com/LeventeLantos/message-blast/internal/model"
)

type Progress struct {
	Completed int     `json:"completed"`
	Failed    int     `json:"failed"`
	Pending   int     `json:"pending"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
	// Done is true once every entry is terminal.
	Done bool `json:"done"`
}

// Project counts sent entries as completed. Percent is 0 for an empty ledger.
func Project(entries []model.LogEntry) Progress {
	p := Progress{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case model.Sent:
			p.Completed++
		case model.Failed:
			p.Failed++
		default:
			p.Pending++
		}
	}

	if p.Total > 0 {
		p.Percent = 100 * float64(p.Completed) / float64(p.Total)
	}
	p.Done = p.Pending == 0
	return p
}

func (p Progress) String() string {
	return fmt.Sprintf("%d / %d (%d%%)", p.Completed, p.Total, int(math.Round(p.Percent)))
}
