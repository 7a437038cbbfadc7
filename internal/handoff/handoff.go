// Package handoff stages the batch attachment so the user can paste it into
// the chat by hand. Staging is best effort and never stops a send.
package handoff

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/LeventeLantos/message-blast/internal/model"
)

// ErrUnsupported is returned by a Clipboard that cannot carry the media.
var ErrUnsupported = errors.New("clipboard cannot stage this media")

type Clipboard interface {
	WriteMedia(ctx context.Context, m *model.Media) error
}

type Outcome string

const (
	Staged      Outcome = "staged"
	Unsupported Outcome = "unsupported"
	Failed      Outcome = "failed"
)

type Handoff struct {
	clip Clipboard
	log  zerolog.Logger
}

// New accepts a nil clipboard; every non-empty stage then reports Unsupported.
func New(clip Clipboard, log zerolog.Logger) *Handoff {
	return &Handoff{clip: clip, log: log}
}

// Stage never retries. The error is informational for the caller's notice.
func (h *Handoff) Stage(ctx context.Context, m *model.Media) (Outcome, error) {
	if m == nil {
		return Staged, nil
	}
	if h == nil || h.clip == nil {
		return Unsupported, ErrUnsupported
	}

	err := h.clip.WriteMedia(ctx, m)
	switch {
	case err == nil:
		h.log.Debug().Str("media", m.Name).Str("kind", string(m.Kind)).Msg("attachment staged")
		return Staged, nil
	case errors.Is(err, ErrUnsupported):
		h.log.Info().Str("media", m.Name).Err(err).Msg("attachment not staged")
		return Unsupported, err
	default:
		h.log.Warn().Str("media", m.Name).Err(err).Msg("attachment staging failed")
		return Failed, err
	}
}
