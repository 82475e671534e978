package closing

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buteco-pos/buteco-pos/internal/store"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	st := store.Open(logger, filepath.Join(dir, "dados.json"), filepath.Join(dir, "backups"))
	s := NewService(logger, st)
	s.now = func() time.Time {
		return time.Date(2025, 8, 1, 10, 0, 0, 0, time.Local)
	}
	return s, st
}

func charged(v float64) *float64 { return &v }

func seedJulyLedger(t *testing.T, st *store.Store) {
	t.Helper()
	require.NoError(t, st.Update(func(state *store.State) error {
		state.Sales = append(state.Sales,
			// paid, on-site
			store.Sale{Date: "05/07/2025 19:00", Item: "GADO", Quantity: 3, UnitPrice: 6,
				Total: 18, Charged: charged(18), SaleType: store.SaleTypeNormal,
				Consumption: store.ConsumptionOnSite, Competency: "2025-07"},
			// complimentary, internal
			store.Sale{Date: "10/07/2025 20:00", Item: "FRANGO", Quantity: 2, UnitPrice: 6,
				Total: 12, Charged: charged(0), SaleType: store.SaleTypeComplimentary,
				Consumption: store.ConsumptionInternal, Competency: "2025-07"},
			// legacy record without competency, matched by date
			store.Sale{Date: "20/07/2025 18:00", Item: "GADO", Quantity: 1, UnitPrice: 6, Total: 6},
			// other month, excluded
			store.Sale{Date: "05/06/2025 19:00", Item: "GADO", Quantity: 5, UnitPrice: 6,
				Total: 30, Charged: charged(30), Competency: "2025-06"},
		)
		state.Expenses = append(state.Expenses,
			store.Expense{Date: "07/07/2025", Description: "Carvão", Amount: 25},
			store.Expense{Date: "07/06/2025", Description: "Gelo", Amount: 99},
		)
		return nil
	}))
}

func TestCloseMonthComputesFullAggregate(t *testing.T) {
	s, st := newService(t)
	seedJulyLedger(t, st)

	closing, err := s.CloseMonth("2025-07")
	require.NoError(t, err)

	require.Equal(t, 2025, closing.Year)
	require.Equal(t, 7, closing.Month)
	require.Equal(t, "Julho", closing.MonthName)
	require.Equal(t, 3, closing.SaleCount)
	require.Equal(t, 1, closing.ExpenseCount)

	// 18 (paid) + 0 (complimentary) + 6 (legacy fallback to total)
	require.InDelta(t, 24.0, closing.TotalCharged, 1e-9)
	require.InDelta(t, 12.0, closing.ComplimentaryValue, 1e-9)
	require.Equal(t, 2, closing.ComplimentaryQty)

	// GADO cost 4.50: (3+1)×4.50; FRANGO cost 4.50: 2×4.50
	require.InDelta(t, 27.0, closing.CostOfGoodsSold, 1e-9)
	require.InDelta(t, 25.0, closing.TotalExpenses, 1e-9)
	require.InDelta(t, -3.0, closing.GrossProfit, 1e-9)
	require.InDelta(t, -12.5, closing.GrossMargin, 1e-9)
	require.InDelta(t, -1.0, closing.FinalBalance, 1e-9)

	// two paid sales: 24 / 2
	require.InDelta(t, 12.0, closing.AverageTicket, 1e-9)

	require.Equal(t, 4, closing.ConsumptionByType[store.ConsumptionOnSite].Qty)
	require.InDelta(t, 24.0, closing.ConsumptionByType[store.ConsumptionOnSite].Value, 1e-9)
	require.Equal(t, 2, closing.ConsumptionByType[store.ConsumptionInternal].Qty)
	require.Zero(t, closing.ConsumptionByType[store.ConsumptionInternal].Value)

	require.Equal(t, "01/08/2025 10:00", closing.GeneratedAt)

	st.View(func(state *store.State) {
		require.Contains(t, state.Closings, "2025-07")
	})
}

func TestCloseMonthOverwritesPreviousClosing(t *testing.T) {
	s, st := newService(t)
	seedJulyLedger(t, st)

	_, err := s.CloseMonth("2025-07")
	require.NoError(t, err)

	require.NoError(t, st.Update(func(state *store.State) error {
		state.Sales = append(state.Sales, store.Sale{
			Date: "25/07/2025 19:00", Item: "GADO", Quantity: 1, UnitPrice: 6,
			Total: 6, Charged: charged(6), Competency: "2025-07",
		})
		return nil
	}))

	closing, err := s.CloseMonth("2025-07")
	require.NoError(t, err)
	require.Equal(t, 4, closing.SaleCount)
	require.InDelta(t, 30.0, closing.TotalCharged, 1e-9)
}

func TestCloseMonthEmptyMonth(t *testing.T) {
	s, _ := newService(t)

	closing, err := s.CloseMonth("2025-01")
	require.NoError(t, err)
	require.Zero(t, closing.SaleCount)
	require.Zero(t, closing.TotalCharged)
	require.Zero(t, closing.GrossMargin)
	require.Zero(t, closing.AverageTicket)
	require.Equal(t, "Janeiro", closing.MonthName)
}

func TestCloseMonthRejectsBadCompetency(t *testing.T) {
	s, _ := newService(t)
	_, err := s.CloseMonth("07/2025")
	require.ErrorIs(t, err, ErrInvalidCompetency)
}

func TestListClosingsSortedByCompetency(t *testing.T) {
	s, st := newService(t)
	require.NoError(t, st.Update(func(state *store.State) error {
		state.Closings["2025-07"] = store.Closing{Year: 2025, Month: 7}
		state.Closings["2024-12"] = store.Closing{Year: 2024, Month: 12}
		state.Closings["2025-01"] = store.Closing{Year: 2025, Month: 1}
		return nil
	}))

	entries := s.ListClosings()
	require.Len(t, entries, 3)
	require.Equal(t, "2024-12", entries[0].Competency)
	require.Equal(t, "2025-01", entries[1].Competency)
	require.Equal(t, "2025-07", entries[2].Competency)
}
