package sales

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/buteco-pos/buteco-pos/internal/events"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	st := store.Open(logger, filepath.Join(dir, "dados.json"), filepath.Join(dir, "backups"))
	handler := NewHandler(logger, NewService(logger, st), events.NewBus())
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, st
}

func TestRecordEndpointEnvelope(t *testing.T) {
	router, st := newTestRouter(t)
	require.NoError(t, st.Update(func(state *store.State) error {
		item := state.Catalog["GADO"]
		item.Stock = 10
		state.Catalog["GADO"] = item
		return nil
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/vendas",
		strings.NewReader(`{"espetinho": "GADO", "quantidade": 3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.Equal(t, "Venda adicionada com sucesso!", body["message"])

	venda, ok := body["venda"].(map[string]any)
	require.True(t, ok)
	// entries recorded over HTTP without an explicit channel are mobile
	require.Equal(t, store.ChannelMobile, venda["origem"])
	require.EqualValues(t, 18, venda["total"])
}

func TestRecordEndpointOversell(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/vendas",
		strings.NewReader(`{"espetinho": "GADO", "quantidade": 2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "Estoque insuficiente! Disponível: 0 unidades", body["message"])
}

func TestRecordEndpointUnknownItem(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/vendas",
		strings.NewReader(`{"espetinho": "SUSHI", "quantidade": 1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTodayEndpointReturnsEmptyArray(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/vendas/hoje", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
