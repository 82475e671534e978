package expenses

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/buteco-pos/buteco-pos/internal/events"
	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

// Handler exposes the expense CRUD endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	bus      *events.Bus
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, bus *events.Bus) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), bus: bus}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/despesas", h.list)
	r.Post("/api/despesas", h.add)
	r.Put("/api/despesas/{indice}", h.edit)
	r.Delete("/api/despesas/{indice}", h.remove)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.List())
}

type expenseRequest struct {
	Date        string  `json:"data"`
	Description string  `json:"descricao" validate:"required"`
	Amount      float64 `json:"valor" validate:"gte=0"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	exp, err := h.service.Add(Input{Date: req.Date, Description: req.Description, Amount: req.Amount})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeExpenses, "Despesa adicionada: "+exp.Description)
	httpx.Success(w, "Despesa adicionada com sucesso!")
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "indice"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Índice inválido")
		return
	}
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	exp, err := h.service.Edit(idx, Input{Date: req.Date, Description: req.Description, Amount: req.Amount})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeExpenses, "Despesa editada: "+exp.Description)
	httpx.Success(w, "Despesa editada com sucesso!")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "indice"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Índice inválido")
		return
	}
	exp, err := h.service.Delete(idx)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeExpenses, "Despesa excluída: "+exp.Description)
	httpx.Success(w, "Despesa excluída com sucesso!")
}
