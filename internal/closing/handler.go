package closing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

// Handler exposes the monthly closing endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers closing routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/fechamentos", h.list)
	r.Post("/api/fechamentos/{competencia}", h.closeMonth)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries := h.service.ListClosings()
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) closeMonth(w http.ResponseWriter, r *http.Request) {
	competency := chi.URLParam(r, "competencia")
	closing, err := h.service.CloseMonth(competency)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.SuccessData(w, "Fechamento mensal gerado com sucesso!", httpx.Envelope{
		"competencia": competency,
		"fechamento":  closing,
	})
}
