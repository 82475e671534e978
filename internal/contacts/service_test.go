package contacts

import (
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

func TestAddValidatesNumber(t *testing.T) {
	s, _ := newService(t)
	_, err := s.Add(Input{Number: "   "})
	require.ErrorIs(t, err, ErrEmptyNumber)

	contact, err := s.Add(Input{Number: " 5511999990000 ", Label: "Nal", Active: true})
	require.NoError(t, err)
	require.Equal(t, "5511999990000", contact.Number)
	require.Len(t, s.List(), 1)
}

func TestEditAndDeleteByIndex(t *testing.T) {
	s, _ := newService(t)
	_, err := s.Add(Input{Number: "111", Active: true})
	require.NoError(t, err)

	edited, err := s.Edit(0, Input{Number: "222", Label: "novo", Active: false})
	require.NoError(t, err)
	require.Equal(t, "222", edited.Number)

	_, err = s.Edit(3, Input{Number: "333"})
	require.ErrorIs(t, err, ErrContactNotFound)

	require.NoError(t, s.Delete(0))
	require.ErrorIs(t, s.Delete(0), ErrContactNotFound)
}

func TestNextRotatesThroughActiveNumbers(t *testing.T) {
	s, _ := newService(t)
	for _, in := range []Input{
		{Number: "111", Active: true},
		{Number: "222", Active: false},
		{Number: "333", Active: true},
	} {
		_, err := s.Add(in)
		require.NoError(t, err)
	}

	first, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, "111", first.Number)

	second, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, "333", second.Number)

	// wraps around, inactive numbers never appear
	third, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, "111", third.Number)
}

func TestNextPersistsCursor(t *testing.T) {
	s, st := newService(t)
	for _, n := range []string{"111", "222"} {
		_, err := s.Add(Input{Number: n, Active: true})
		require.NoError(t, err)
	}

	_, err := s.Next()
	require.NoError(t, err)

	st.View(func(state *store.State) {
		require.Equal(t, 1, state.RotationIndex)
	})
}

func TestNextWithoutActiveNumbers(t *testing.T) {
	s, _ := newService(t)
	_, err := s.Next()
	require.ErrorIs(t, err, ErrNoActiveContact)

	_, err = s.Add(Input{Number: "111", Active: false})
	require.NoError(t, err)
	_, err = s.Next()
	require.ErrorIs(t, err, ErrNoActiveContact)
}
