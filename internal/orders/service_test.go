package orders

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
		return time.Date(2025, 8, 1, 19, 30, 0, 0, time.Local)
	}
	return s, st
}

func setStock(t *testing.T, st *store.Store, name string, stock int) {
	t.Helper()
	require.NoError(t, st.Update(func(state *store.State) error {
		item := state.Catalog[name]
		item.Stock = stock
		state.Catalog[name] = item
		return nil
	}))
}

func TestCreateFreezesPricesAndAssignsIDs(t *testing.T) {
	s, _ := newService(t)

	first, err := s.Create(CreateInput{
		Customer: "João",
		Items:    []LineInput{{Item: "GADO", Quantity: 2}, {Item: "QUEIJO", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, first.ID)
	require.Equal(t, string(StatusPending), first.Status)
	require.InDelta(t, 21.00, first.Total, 1e-9)
	require.Contains(t, first.StatusTimestamps, string(StatusPending))
	require.InDelta(t, 6.00, first.Items[0].UnitPrice, 1e-9)

	second, err := s.Create(CreateInput{
		Customer: "Maria",
		Items:    []LineInput{{Item: "FRANGO", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, second.ID)
}

func TestCreateValidation(t *testing.T) {
	s, _ := newService(t)

	_, err := s.Create(CreateInput{Customer: "João"})
	require.ErrorIs(t, err, ErrEmptyOrder)

	_, err = s.Create(CreateInput{Customer: "João", Items: []LineInput{{Item: "GADO", Quantity: 0}}})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.Create(CreateInput{Customer: "João", Items: []LineInput{{Item: "SUSHI", Quantity: 1}}})
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestSetStatusStampsTransitions(t *testing.T) {
	s, _ := newService(t)
	order, err := s.Create(CreateInput{Customer: "João", Items: []LineInput{{Item: "GADO", Quantity: 1}}})
	require.NoError(t, err)

	updated, results, err := s.SetStatus(order.ID, StatusAccepted)
	require.NoError(t, err)
	require.Nil(t, results)
	require.Equal(t, string(StatusAccepted), updated.Status)
	require.Contains(t, updated.StatusTimestamps, string(StatusAccepted))

	_, _, err = s.SetStatus(order.ID, Status("cancelado"))
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, _, err = s.SetStatus(order.ID, StatusPending)
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, _, err = s.SetStatus(999, StatusAccepted)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReadyConvertsLinesIntoSales(t *testing.T) {
	s, st := newService(t)
	setStock(t, st, "GADO", 5)
	setStock(t, st, "QUEIJO", 5)

	order, err := s.Create(CreateInput{
		Customer: "João",
		Items:    []LineInput{{Item: "GADO", Quantity: 2}, {Item: "QUEIJO", Quantity: 1}},
	})
	require.NoError(t, err)

	_, results, err := s.SetStatus(order.ID, StatusReady)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.True(t, results[0].Converted)
	require.True(t, results[1].Converted)

	st.View(func(state *store.State) {
		require.Empty(t, state.Orders)
		require.Len(t, state.Sales, 2)
		for _, sale := range state.Sales {
			require.Equal(t, store.ChannelOnlineOrder, sale.Channel)
			require.Equal(t, store.ConsumptionDelivery, sale.Consumption)
			require.NotNil(t, sale.OrderID)
			require.Equal(t, order.ID, *sale.OrderID)
			require.InDelta(t, sale.Total, sale.ChargedValue(), 1e-9)
		}
		require.Equal(t, 3, state.Catalog["GADO"].Stock)
		require.Equal(t, 4, state.Catalog["QUEIJO"].Stock)
	})
}

func TestReadyClampsStockAtZero(t *testing.T) {
	s, st := newService(t)
	setStock(t, st, "GADO", 1)

	order, err := s.Create(CreateInput{Customer: "João", Items: []LineInput{{Item: "GADO", Quantity: 4}}})
	require.NoError(t, err)

	_, results, err := s.SetStatus(order.ID, StatusReady)
	require.NoError(t, err)
	require.True(t, results[0].Converted)

	st.View(func(state *store.State) {
		require.Zero(t, state.Catalog["GADO"].Stock)
		require.Len(t, state.Sales, 1)
	})
}

func TestReadySkipsLinesMissingFromCatalog(t *testing.T) {
	s, st := newService(t)
	setStock(t, st, "GADO", 5)

	order, err := s.Create(CreateInput{
		Customer: "João",
		Items:    []LineInput{{Item: "GADO", Quantity: 1}, {Item: "QUEIJO", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, st.Update(func(state *store.State) error {
		delete(state.Catalog, "QUEIJO")
		return nil
	}))

	_, results, err := s.SetStatus(order.ID, StatusReady)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.True(t, results[0].Converted)
	require.False(t, results[1].Converted)
	require.NotEmpty(t, results[1].Reason)

	st.View(func(state *store.State) {
		require.Len(t, state.Sales, 1)
		require.Empty(t, state.Orders)
	})
}

func TestDeleteCancelsWithoutSideEffects(t *testing.T) {
	s, st := newService(t)
	setStock(t, st, "GADO", 5)

	order, err := s.Create(CreateInput{Customer: "João", Items: []LineInput{{Item: "GADO", Quantity: 2}}})
	require.NoError(t, err)

	require.NoError(t, s.Delete(order.ID))
	require.ErrorIs(t, s.Delete(order.ID), ErrOrderNotFound)

	st.View(func(state *store.State) {
		require.Empty(t, state.Sales)
		require.Equal(t, 5, state.Catalog["GADO"].Stock)
	})
}
