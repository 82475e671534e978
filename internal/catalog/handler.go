package catalog

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/buteco-pos/buteco-pos/internal/events"
	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

// Handler exposes catalog and stock endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	bus      *events.Bus
	store    *store.Store
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, bus *events.Bus, st *store.Store) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		bus:      bus,
		store:    st,
	}
}

// MountRoutes registers catalog and stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/espetinhos", h.list)
	r.Get("/api/espetinhos/margens", h.listWithMetrics)
	r.Post("/api/espetinhos", h.create)
	r.Put("/api/espetinhos/{nome}", h.edit)
	r.Delete("/api/espetinhos/{nome}", h.remove)

	r.Post("/api/estoque/adicionar", h.addStock)
	r.Post("/api/estoque/custo", h.updateCost)
	r.Post("/api/estoque/zerar/{nome}", h.zeroStock)
	r.Post("/api/estoque/zerar-tudo", h.zeroAllStock)
}

// list serves the raw catalog map, the shape the storefront and the mobile
// client always consumed.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var catalog map[string]store.Item
	h.store.View(func(st *store.State) {
		catalog = make(map[string]store.Item, len(st.Catalog))
		for name, item := range st.Catalog {
			catalog[name] = item
		}
	})
	httpx.JSON(w, http.StatusOK, catalog)
}

func (h *Handler) listWithMetrics(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.List())
}

type createRequest struct {
	Name  string  `json:"nome" validate:"required"`
	Price float64 `json:"valor" validate:"gte=0"`
	Cost  float64 `json:"custo" validate:"gte=0"`
	Stock int     `json:"estoque"`
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
	if err := h.service.Create(req.Name, req.Price, req.Cost, req.Stock); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeCatalog, "Espetinho cadastrado: "+req.Name)
	httpx.Success(w, "Espetinho cadastrado com sucesso!")
}

type editRequest struct {
	Price *float64 `json:"valor"`
	Cost  *float64 `json:"custo"`
	Stock *int     `json:"estoque"`
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	nome := chi.URLParam(r, "nome")
	var req editRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.service.Edit(nome, EditInput{Price: req.Price, Cost: req.Cost, Stock: req.Stock}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeCatalog, "Espetinho atualizado: "+nome)
	httpx.Success(w, "Espetinho atualizado com sucesso!")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	nome := chi.URLParam(r, "nome")
	if err := h.service.Delete(nome); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeCatalog, "Espetinho removido: "+nome)
	httpx.Success(w, "Espetinho removido com sucesso!")
}

type stockRequest struct {
	Item     string `json:"espetinho" validate:"required"`
	Quantity int    `json:"quantidade"`
}

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	after, err := h.service.AddStock(req.Item, req.Quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeStock, fmt.Sprintf("Estoque de %s: %d", req.Item, after))
	httpx.SuccessData(w, "Estoque atualizado com sucesso!", httpx.Envelope{"estoque": after})
}

type costRequest struct {
	Item string  `json:"espetinho" validate:"required"`
	Cost float64 `json:"custo" validate:"gte=0"`
}

func (h *Handler) updateCost(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	if err := h.service.UpdateCost(req.Item, req.Cost); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeCatalog, "Custo atualizado: "+req.Item)
	httpx.Success(w, "Custo atualizado com sucesso!")
}

func (h *Handler) zeroStock(w http.ResponseWriter, r *http.Request) {
	nome := chi.URLParam(r, "nome")
	if err := h.service.ZeroStock(nome); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeStock, "Estoque zerado: "+nome)
	httpx.Success(w, "Estoque zerado com sucesso!")
}

func (h *Handler) zeroAllStock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ZeroAllStock(); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.bus.Publish(events.TypeStock, "Estoque de todos os espetinhos zerado")
	httpx.Success(w, "Estoque de todos os espetinhos zerado!")
}
