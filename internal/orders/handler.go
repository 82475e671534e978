package orders

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/buteco-pos/buteco-pos/internal/events"
	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

// Handler exposes the order queue endpoints used by the storefront page.
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

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/api/pedidos", h.create)
	r.Get("/api/pedidos", h.list)
	r.Put("/api/pedidos/{id}/status", h.setStatus)
	r.Delete("/api/pedidos/{id}", h.remove)
}

type lineRequest struct {
	Item     string `json:"espetinho" validate:"required"`
	Quantity int    `json:"quantidade" validate:"required,gt=0"`
}

type createRequest struct {
	Customer string        `json:"cliente" validate:"required"`
	Phone    string        `json:"telefone"`
	Address  string        `json:"endereco"`
	Notes    string        `json:"observacoes"`
	Items    []lineRequest `json:"itens" validate:"required,min=1,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	in := CreateInput{Customer: req.Customer, Phone: req.Phone, Address: req.Address, Notes: req.Notes}
	for _, line := range req.Items {
		in.Items = append(in.Items, LineInput{Item: line.Item, Quantity: line.Quantity})
	}
	order, err := h.service.Create(in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeOrders, fmt.Sprintf("Novo pedido #%d de %s", order.ID, order.Customer))
	httpx.SuccessData(w, "Pedido recebido com sucesso!", httpx.Envelope{"pedido": order})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.List())
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Pedido inválido")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	order, results, err := h.service.SetStatus(id, Status(req.Status))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeOrders, fmt.Sprintf("Pedido #%d: %s", order.ID, order.Status))
	extra := httpx.Envelope{"status": order.Status}
	if results != nil {
		extra["itens"] = results
	}
	httpx.SuccessData(w, "Status atualizado com sucesso!", extra)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Pedido inválido")
		return
	}
	if err := h.service.Delete(id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeOrders, fmt.Sprintf("Pedido #%d cancelado", id))
	httpx.Success(w, "Pedido cancelado com sucesso!")
}
