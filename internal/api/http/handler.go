package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/civitgrab/civitgrab/internal/domain"
)

// StatusProvider exposes a snapshot of the running batch.
type StatusProvider interface {
	Status() domain.RunStatus
}

// StatusHandler serves run progress for operators watching a long batch.
type StatusHandler struct {
	provider StatusProvider
	logger   *slog.Logger
}

// NewStatusHandler creates a StatusHandler backed by the given provider.
func NewStatusHandler(provider StatusProvider, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{provider: provider, logger: logger}
}

// GetStatus handles GET /status.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Status())
}

// Healthz handles GET /healthz.
func (h *StatusHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
