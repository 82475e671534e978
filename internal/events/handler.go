package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler streams the event feed to desktop clients over SSE.
type Handler struct {
	logger *slog.Logger
	bus    *Bus
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, bus *Bus) *Handler {
	return &Handler{logger: logger, bus: bus}
}

// MountRoutes registers the event stream route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/events", h.stream)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming não suportado", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				h.logger.Warn("serializar evento", slog.Any("error", err))
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", evt.ID, evt.Type, payload)
			flusher.Flush()
		}
	}
}
