package consol

import (
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buteco-pos/buteco-pos/internal/store"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	st := store.Open(logger, filepath.Join(dir, "dados.json"), filepath.Join(dir, "backups"))
	return NewService(logger, st), st
}

func doc(t *testing.T, v any) Document {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return Document{Name: "secundario.json", Data: data}
}

func TestConsolidateImportsUnseenRecords(t *testing.T) {
	s, st := newService(t)

	res, err := s.Consolidate([]Document{doc(t, map[string]any{
		"vendas": []map[string]any{
			{"data": "10/07/2025 18:00", "espetinho": "GADO", "quantidade": 2,
				"valor_unitario": 6.0, "total": 12.0},
		},
		"despesas": []map[string]any{
			{"data": "10/07/2025", "descricao": "Gelo", "valor": 10.0},
		},
	})})
	require.NoError(t, err)
	require.Equal(t, 1, res.Documents)
	require.Equal(t, 1, res.SalesAdded)
	require.Equal(t, 1, res.ExpensesAdded)
	require.NotEmpty(t, res.Backup)

	st.View(func(state *store.State) {
		require.Len(t, state.Sales, 1)
		require.Len(t, state.Expenses, 1)
	})
}

func TestConsolidateIsIdempotent(t *testing.T) {
	s, st := newService(t)
	secondary := map[string]any{
		"vendas": []map[string]any{
			{"data": "10/07/2025 18:00", "espetinho": "GADO", "quantidade": 2,
				"valor_unitario": 6.0, "total": 12.0},
		},
		"despesas": []map[string]any{
			{"data": "10/07/2025", "descricao": "Gelo", "valor": 10.0},
		},
	}

	_, err := s.Consolidate([]Document{doc(t, secondary)})
	require.NoError(t, err)
	res, err := s.Consolidate([]Document{doc(t, secondary)})
	require.NoError(t, err)

	require.Zero(t, res.SalesAdded)
	require.Zero(t, res.ExpensesAdded)
	st.View(func(state *store.State) {
		require.Len(t, state.Sales, 1)
		require.Len(t, state.Expenses, 1)
	})
}

func TestConsolidateDedupsAcrossTwoSecondaries(t *testing.T) {
	s, st := newService(t)
	sale := map[string]any{
		"data": "10/07/2025 18:00", "espetinho": "GADO", "quantidade": 2,
		"valor_unitario": 6.0, "total": 12.0,
	}

	res, err := s.Consolidate([]Document{
		doc(t, map[string]any{"vendas": []map[string]any{sale}}),
		doc(t, map[string]any{"vendas": []map[string]any{sale}}),
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Documents)
	require.Equal(t, 1, res.SalesAdded)

	st.View(func(state *store.State) {
		require.Len(t, state.Sales, 1)
	})
}

func TestConsolidateNeverImportsStock(t *testing.T) {
	s, st := newService(t)

	_, err := s.Consolidate([]Document{doc(t, map[string]any{
		"espetinhos": map[string]any{
			"GADO":    map[string]any{"valor": 6.0, "custo": 4.5, "estoque": 99},
			"PICANHA": map[string]any{"valor": 15.0, "custo": 11.0, "estoque": 50},
		},
	})})
	require.NoError(t, err)

	st.View(func(state *store.State) {
		// existing item untouched, new item arrives with zero stock
		require.Equal(t, store.Item{Price: 6.0, Cost: 4.5, Stock: 0}, state.Catalog["GADO"])
		require.Equal(t, store.Item{Price: 15.0, Cost: 11.0, Stock: 0}, state.Catalog["PICANHA"])
	})
}

func TestConsolidateDropsRecordsMissingRequiredFields(t *testing.T) {
	s, st := newService(t)

	res, err := s.Consolidate([]Document{doc(t, map[string]any{
		"vendas": []map[string]any{
			{"espetinho": "GADO", "quantidade": 1, "total": 6.0},
		},
		"despesas": []map[string]any{
			{"data": "10/07/2025", "valor": 10.0},
			{"descricao": "Gelo", "valor": 10.0},
		},
	})})
	require.NoError(t, err)
	require.Zero(t, res.SalesAdded)
	require.Zero(t, res.ExpensesAdded)
	st.View(func(state *store.State) {
		require.Empty(t, state.Sales)
		require.Empty(t, state.Expenses)
	})
}

func TestConsolidateGapFillsClosings(t *testing.T) {
	s, st := newService(t)
	require.NoError(t, st.Update(func(state *store.State) error {
		state.Closings["2025-07"] = store.Closing{Year: 2025, Month: 7, TotalCharged: 500}
		return nil
	}))

	_, err := s.Consolidate([]Document{doc(t, map[string]any{
		"fechamentos_mensais": map[string]any{
			"2025-07": map[string]any{"ano": 2025, "mes": 7, "total_cobrado": 999.0},
			"2025-06": map[string]any{"ano": 2025, "mes": 6, "total_cobrado": 300.0},
		},
	})})
	require.NoError(t, err)

	st.View(func(state *store.State) {
		require.InDelta(t, 500.0, state.Closings["2025-07"].TotalCharged, 1e-9)
		require.InDelta(t, 300.0, state.Closings["2025-06"].TotalCharged, 1e-9)
	})
}

func TestConsolidateSkipsUnparseableDocuments(t *testing.T) {
	s, st := newService(t)

	res, err := s.Consolidate([]Document{
		{Name: "quebrado.json", Data: []byte("{not json")},
		doc(t, map[string]any{
			"vendas": []map[string]any{
				{"data": "10/07/2025 18:00", "espetinho": "GADO", "quantidade": 1,
					"valor_unitario": 6.0, "total": 6.0},
			},
		}),
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Documents)
	require.Equal(t, 1, res.SalesAdded)
	st.View(func(state *store.State) {
		require.Len(t, state.Sales, 1)
	})
}

func TestConsolidateSortsLedgersByTimestamp(t *testing.T) {
	s, st := newService(t)
	require.NoError(t, st.Update(func(state *store.State) error {
		state.Sales = append(state.Sales,
			store.Sale{Date: "20/07/2025 18:00", Item: "GADO", Quantity: 1, Total: 6},
			store.Sale{Date: "data quebrada", Item: "GADO", Quantity: 1, Total: 6},
		)
		return nil
	}))

	_, err := s.Consolidate([]Document{doc(t, map[string]any{
		"vendas": []map[string]any{
			{"data": "2025-07-05 12:00", "espetinho": "GADO", "quantidade": 1,
				"valor_unitario": 6.0, "total": 6.0},
			{"data": "10/07/2025", "espetinho": "FRANGO", "quantidade": 1,
				"valor_unitario": 6.0, "total": 6.0},
		},
	})})
	require.NoError(t, err)

	st.View(func(state *store.State) {
		require.Len(t, state.Sales, 4)
		// unparseable dates fall back to the zero time and sort first
		require.Equal(t, "data quebrada", state.Sales[0].Date)
		require.Equal(t, "2025-07-05 12:00", state.Sales[1].Date)
		require.Equal(t, "10/07/2025", state.Sales[2].Date)
		require.Equal(t, "20/07/2025 18:00", state.Sales[3].Date)
	})
}

func TestConsolidatePreservesUnknownSaleFields(t *testing.T) {
	s, st := newService(t)

	_, err := s.Consolidate([]Document{doc(t, map[string]any{
		"vendas": []map[string]any{
			{"data": "10/07/2025 18:00", "espetinho": "GADO", "quantidade": 1,
				"valor_unitario": 6.0, "total": 6.0, "campo_legado": "mantido"},
		},
	})})
	require.NoError(t, err)

	st.View(func(state *store.State) {
		require.Len(t, state.Sales, 1)
		raw, err := json.Marshal(state.Sales[0])
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		require.Equal(t, "mantido", m["campo_legado"])
	})
}
