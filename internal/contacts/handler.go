package contacts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

// Handler exposes the contact-number endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers contact routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/whatsapp", func(r chi.Router) {
		r.Get("/numeros", h.list)
		r.Post("/numeros", h.add)
		r.Put("/numeros/{indice}", h.edit)
		r.Delete("/numeros/{indice}", h.remove)
		r.Get("/proximo", h.next)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	contacts := h.service.List()
	if contacts == nil {
		contacts = []store.Contact{}
	}
	httpx.JSON(w, http.StatusOK, contacts)
}

type contactRequest struct {
	Number string `json:"number" validate:"required"`
	Label  string `json:"label"`
	Active *bool  `json:"active"`
}

func (r contactRequest) input() Input {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return Input{Number: r.Number, Label: r.Label, Active: active}
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	contact, err := h.service.Add(req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.SuccessData(w, "Número adicionado com sucesso!", httpx.Envelope{"numero": contact})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "indice"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Índice inválido")
		return
	}
	var req contactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	contact, err := h.service.Edit(idx, req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.SuccessData(w, "Número atualizado com sucesso!", httpx.Envelope{"numero": contact})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "indice"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Índice inválido")
		return
	}
	if err := h.service.Delete(idx); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Número removido com sucesso!")
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	contact, err := h.service.Next()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.SuccessData(w, "Número selecionado", httpx.Envelope{
		"number": contact.Number,
		"label":  contact.Label,
	})
}
