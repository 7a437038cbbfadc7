package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/LeventeLantos/message-blast/internal/config"
	"github.com/LeventeLantos/message-blast/internal/contacts"
	"github.com/LeventeLantos/message-blast/internal/model"
	"github.com/LeventeLantos/message-blast/internal/progress"
	"github.com/LeventeLantos/message-blast/internal/scheduler"
	"github.com/LeventeLantos/message-blast/internal/service"
	"github.com/LeventeLantos/message-blast/internal/template"
)

const maxMediaBytes = 64 << 20

type Handler struct {
	session *service.Session
	sched   *scheduler.Scheduler
	mode    config.Mode
	log     zerolog.Logger

	// runCtx parents autonomous runs so they outlive the starting request.
	runCtx context.Context
}

func NewHandler(ctx context.Context, s *service.Session, sched *scheduler.Scheduler, mode config.Mode, log zerolog.Logger) *Handler {
	return &Handler{
		session: s,
		sched:   sched,
		mode:    mode,
		log:     log,
		runCtx:  ctx,
	}
}

type batchView struct {
	ID       string            `json:"id"`
	Mode     config.Mode       `json:"mode"`
	Running  bool              `json:"running"`
	Progress progress.Progress `json:"progress"`
	Entries  []entryView       `json:"entries"`
	Retry    []model.Contact   `json:"failedContacts,omitempty"`
}

type entryView struct {
	model.LogEntry
	Label string `json:"label"`
}

type templateBody struct {
	Template     string   `json:"template"`
	Placeholders []string `json:"placeholders"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.session.Contacts()})
}

func (h *Handler) PutContacts(w http.ResponseWriter, r *http.Request) {
	list, err := contacts.ParseJSON(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.session.SetContacts(list)
	writeJSON(w, http.StatusOK, map[string]any{"items": list})
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl := h.session.Template()
	writeJSON(w, http.StatusOK, templateBody{Template: tmpl, Placeholders: template.Placeholders(tmpl)})
}

func (h *Handler) PutTemplate(w http.ResponseWriter, r *http.Request) {
	var body templateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.session.SetTemplate(body.Template)
	writeJSON(w, http.StatusOK, templateBody{Template: body.Template, Placeholders: template.Placeholders(body.Template)})
}

func (h *Handler) PutMedia(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxMediaBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(payload) > maxMediaBytes {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("media exceeds 64 MiB"))
		return
	}

	m, err := model.NewMedia(r.URL.Query().Get("name"), r.Header.Get("Content-Type"), payload)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrUnsupportedMedia) {
			status = http.StatusUnsupportedMediaType
		}
		writeError(w, status, err)
		return
	}
	if err := h.session.SetMedia(m); err != nil {
		h.log.Warn().Err(err).Msg("release previous media")
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": m.Name, "mimeType": m.MimeType, "kind": m.Kind, "size": len(m.Payload)})
}

func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ClearMedia(); err != nil {
		h.log.Warn().Err(err).Msg("release media")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) StartBatch(w http.ResponseWriter, r *http.Request) {
	b, err := h.session.Start()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if h.mode == config.ModeAutonomous {
		if err := h.startRun(b); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, h.view(b))
}

// RunBatch starts an autonomous run over the queued contacts of the live
// batch, in either mode. It resumes a run that was stopped.
func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	b := h.session.Active()
	if b == nil {
		writeServiceError(w, service.ErrBatchNotActive)
		return
	}
	if err := h.startRun(b); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.view(b))
}

func (h *Handler) startRun(b *service.Batch) error {
	orch := h.session.Orchestrator()
	started, err := h.sched.Start(h.runCtx, func(ctx context.Context) error {
		return orch.Run(ctx, b)
	})
	if err != nil {
		return err
	}
	if !started {
		return service.ErrBatchRunning
	}
	return nil
}

func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	b := h.session.Active()
	if b == nil {
		writeServiceError(w, service.ErrBatchNotActive)
		return
	}
	writeJSON(w, http.StatusOK, h.view(b))
}

func (h *Handler) StopBatch(w http.ResponseWriter, r *http.Request) {
	stopped := h.sched.Stop()
	resp := map[string]any{"stopped": stopped}
	if b := h.session.Active(); b != nil {
		resp["batch"] = h.view(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResetBatch does not wait for a run to return; the run ends on its own
// once its batch is no longer live.
func (h *Handler) ResetBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Reset(); err != nil {
		writeServiceError(w, err)
		return
	}
	h.sched.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdvanceContact(w http.ResponseWriter, r *http.Request) {
	entry, err := h.session.Advance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entryView{LogEntry: entry, Label: entry.Status.Label()})
}

func (h *Handler) view(b *service.Batch) batchView {
	entries := b.Entries()
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryView{LogEntry: e, Label: e.Status.Label()}
	}
	return batchView{
		ID:       b.ID,
		Mode:     h.mode,
		Running:  b.Running(),
		Progress: progress.Project(entries),
		Entries:  views,
		Retry:    h.session.Orchestrator().FailedContacts(b),
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrUnknownContact):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrBatchAlreadyActive),
		errors.Is(err, service.ErrBatchNotActive),
		errors.Is(err, service.ErrBatchRunning):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
