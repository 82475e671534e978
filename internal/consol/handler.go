package consol

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buteco-pos/buteco-pos/internal/events"
	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

// maxUploadBytes bounds a consolidation upload.
const maxUploadBytes = 32 << 20

// Handler exposes the consolidation endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	bus     *events.Bus
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, bus *events.Bus) *Handler {
	return &Handler{logger: logger, service: service, bus: bus}
}

// MountRoutes registers consolidation routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/api/consolidar-bancos", h.consolidate)
}

func (h *Handler) consolidate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Upload inválido: envie os arquivos no campo 'arquivos'")
		return
	}
	files := r.MultipartForm.File["arquivos"]
	if len(files) == 0 {
		httpx.Fail(w, http.StatusBadRequest, "Nenhum arquivo enviado")
		return
	}

	docs := make([]Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Erro ao ler arquivo: "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Erro ao ler arquivo: "+fh.Filename)
			return
		}
		docs = append(docs, Document{Name: fh.Filename, Data: data})
	}

	res, err := h.service.Consolidate(docs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.bus.Publish(events.TypeConsolidation, fmt.Sprintf(
		"Consolidação: %d vendas e %d despesas importadas", res.SalesAdded, res.ExpensesAdded))

	httpx.SuccessData(w, "Consolidação realizada com sucesso!", httpx.Envelope{
		"arquivos_processados": res.Documents,
		"vendas_adicionadas":   res.SalesAdded,
		"despesas_adicionadas": res.ExpensesAdded,
		"total_vendas":         res.TotalSales,
		"total_despesas":       res.TotalExpenses,
		"backup":               res.Backup,
	})
}
