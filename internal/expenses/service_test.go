package expenses

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buteco-pos/buteco-pos/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	st := store.Open(logger, filepath.Join(dir, "dados.json"), filepath.Join(dir, "backups"))
	s := NewService(logger, st)
	s.now = func() time.Time {
		return time.Date(2025, 8, 1, 19, 30, 0, 0, time.Local)
	}
	return s
}

func TestAddDefaultsDateToNow(t *testing.T) {
	s := newService(t)
	exp, err := s.Add(Input{Description: "Carvão", Amount: 25})
	require.NoError(t, err)
	require.Equal(t, "01/08/2025 19:30", exp.Date)
	require.Len(t, s.List(), 1)
}

func TestAddAcceptsDateOnly(t *testing.T) {
	s := newService(t)
	exp, err := s.Add(Input{Date: "15/07/2025", Description: "Gelo", Amount: 10})
	require.NoError(t, err)
	require.Equal(t, "15/07/2025", exp.Date)
}

func TestAddValidation(t *testing.T) {
	s := newService(t)
	_, err := s.Add(Input{Description: "   ", Amount: 5})
	require.ErrorIs(t, err, ErrEmptyDescription)

	_, err = s.Add(Input{Date: "2025-07-15", Description: "Gelo", Amount: 5})
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestEditReplacesEntry(t *testing.T) {
	s := newService(t)
	_, err := s.Add(Input{Description: "Carvão", Amount: 25})
	require.NoError(t, err)

	edited, err := s.Edit(0, Input{Date: "02/08/2025", Description: "Carvão extra", Amount: 30})
	require.NoError(t, err)
	require.Equal(t, "Carvão extra", edited.Description)
	require.InDelta(t, 30.0, s.List()[0].Amount, 1e-9)

	_, err = s.Edit(5, Input{Description: "x", Amount: 1})
	require.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestDeleteRemovesEntry(t *testing.T) {
	s := newService(t)
	_, err := s.Add(Input{Description: "Carvão", Amount: 25})
	require.NoError(t, err)

	removed, err := s.Delete(0)
	require.NoError(t, err)
	require.Equal(t, "Carvão", removed.Description)
	require.Empty(t, s.List())

	_, err = s.Delete(0)
	require.ErrorIs(t, err, ErrExpenseNotFound)
}
