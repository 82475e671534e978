// Package backup exposes manual backup, backup listing and raw document
// download for the admin surface.
package backup

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

// Handler serves the backup endpoints.
type Handler struct {
	logger *slog.Logger
	store  *store.Store
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, st *store.Store) *Handler {
	return &Handler{logger: logger, store: st}
}

// MountRoutes registers backup routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/api/backup", h.create)
	r.Get("/api/backups", h.list)
	r.Get("/api/download", h.download)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	name, err := h.store.Backup("manual")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("backup manual criado", slog.String("arquivo", name))
	httpx.SuccessData(w, "Backup criado com sucesso!", httpx.Envelope{"backup": name})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListBackups()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{"success": true, "backups": names})
}

// download streams the current document verbatim, for off-device copies.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.store.Path())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dados_espetinho.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
