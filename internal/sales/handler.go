package sales

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/buteco-pos/buteco-pos/internal/events"
	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

// Handler exposes the sale ledger endpoints consumed by the mobile client
// and the storefront.
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

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/api/vendas", h.record)
	r.Get("/api/vendas/hoje", h.today)
	r.Get("/api/vendas/todas", h.all)
	r.Put("/api/vendas/{indice}", h.edit)
	r.Delete("/api/vendas/{indice}", h.remove)
}

type recordRequest struct {
	Item         string   `json:"espetinho" validate:"required"`
	Quantity     int      `json:"quantidade" validate:"required,gt=0"`
	UnitPrice    *float64 `json:"valor_unitario"`
	SaleType     string   `json:"tipo_venda" validate:"omitempty,oneof=normal bonificacao"`
	Consumption  string   `json:"tipo_consumo" validate:"omitempty,oneof=local entrega interno"`
	AffectsStock *bool    `json:"alterar_estoque"`
	Channel      string   `json:"origem" validate:"omitempty,oneof=desktop mobile web pedido_online"`
	Timestamp    string   `json:"data"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	channel := req.Channel
	if channel == "" {
		// the HTTP surface is the companion app; untagged entries are mobile
		channel = store.ChannelMobile
	}
	sale, err := h.service.Record(RecordInput{
		Item:         req.Item,
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		AffectsStock: req.AffectsStock,
		SaleType:     req.SaleType,
		Consumption:  req.Consumption,
		Channel:      channel,
		Timestamp:    req.Timestamp,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeSales,
		fmt.Sprintf("Venda Mobile: %dx %s - R$ %.2f", sale.Quantity, sale.Item, sale.Total))
	httpx.SuccessData(w, "Venda adicionada com sucesso!", httpx.Envelope{"venda": sale})
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	vendas := h.service.Today()
	if vendas == nil {
		vendas = []store.Sale{}
	}
	httpx.JSON(w, http.StatusOK, vendas)
}

func (h *Handler) all(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.All())
}

type editRequest struct {
	Timestamp string  `json:"data" validate:"required"`
	Item      string  `json:"espetinho" validate:"required"`
	Quantity  int     `json:"quantidade" validate:"required,gt=0"`
	UnitPrice float64 `json:"valor_unitario" validate:"gte=0"`
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "indice"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Índice inválido")
		return
	}
	var req editRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	sale, err := h.service.EditToday(idx, EditInput{
		Timestamp: req.Timestamp,
		Item:      req.Item,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeSales, "Venda editada: "+sale.Item)
	httpx.Success(w, "Venda editada com sucesso!")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "indice"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Índice inválido")
		return
	}
	sale, err := h.service.DeleteToday(idx)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeSales,
		fmt.Sprintf("Venda Mobile Excluída: %s - R$ %.2f", sale.Item, sale.Total))
	httpx.Success(w, "Venda excluída com sucesso!")
}
