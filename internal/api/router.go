package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("GET /v1/contacts", h.GetContacts)
	mux.HandleFunc("PUT /v1/contacts", h.PutContacts)
	mux.HandleFunc("GET /v1/template", h.GetTemplate)
	mux.HandleFunc("PUT /v1/template", h.PutTemplate)
	mux.HandleFunc("PUT /v1/media", h.PutMedia)
	mux.HandleFunc("DELETE /v1/media", h.DeleteMedia)

	mux.HandleFunc("POST /v1/batch", h.StartBatch)
	mux.HandleFunc("GET /v1/batch", h.GetBatch)
	mux.HandleFunc("DELETE /v1/batch", h.ResetBatch)
	mux.HandleFunc("POST /v1/batch/run", h.RunBatch)
	mux.HandleFunc("POST /v1/batch/stop", h.StopBatch)
	mux.HandleFunc("POST /v1/batch/contacts/{id}/advance", h.AdvanceContact)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("message-blast"))
	})

	return loggingMiddleware(h.log, mux)
}
