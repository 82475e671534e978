package reports

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

// Handler exposes the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/relatorios", func(r chi.Router) {
		r.Get("/diario", h.daily)
		r.Get("/por-espetinho", h.perItem)
		r.Get("/por-origem", h.perChannel)
		r.Get("/periodo", h.period)
		r.Get("/top", h.top)
	})
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Daily())
}

func (h *Handler) perItem(w http.ResponseWriter, r *http.Request) {
	items := h.service.PerItem()
	if items == nil {
		items = []ItemTotals{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) perChannel(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.PerChannel())
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Period(r.URL.Query().Get("inicio"), r.URL.Query().Get("fim"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) top(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limite"))
	items := h.service.Top(limit)
	if items == nil {
		items = []ItemTotals{}
	}
	httpx.JSON(w, http.StatusOK, items)
}
