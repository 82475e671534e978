// Package contacts manages the rotating contact-number list used to hand
// out an ordering number to customers. The rotation cursor is persisted so
// every client hands out the same sequence.
package contacts

import (
	"log/slog"
	"strings"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

var (
	ErrContactNotFound = httpx.Wrap(httpx.ErrNotFound, "Número não encontrado")
	ErrEmptyNumber     = httpx.Wrap(httpx.ErrValidation, "Informe o número")
	ErrNoActiveContact = httpx.Wrap(httpx.ErrNotFound, "Nenhum número ativo cadastrado")
)

// Input carries the fields of a contact create or edit.
type Input struct {
	Number string
	Label  string
	Active bool
}

// Service manages the contact list and its rotation cursor.
type Service struct {
	logger *slog.Logger
	store  *store.Store
}

// NewService builds Service.
func NewService(logger *slog.Logger, st *store.Store) *Service {
	return &Service{logger: logger, store: st}
}

// List returns a copy of the contact list.
func (s *Service) List() []store.Contact {
	var out []store.Contact
	s.store.View(func(st *store.State) {
		out = append(out, st.Contacts...)
	})
	return out
}

// Add appends a contact.
func (s *Service) Add(in Input) (store.Contact, error) {
	contact, err := build(in)
	if err != nil {
		return store.Contact{}, err
	}
	err = s.store.Update(func(st *store.State) error {
		st.Contacts = append(st.Contacts, contact)
		return nil
	})
	if err != nil {
		return store.Contact{}, err
	}
	return contact, nil
}

// Edit replaces the contact at index.
func (s *Service) Edit(index int, in Input) (store.Contact, error) {
	contact, err := build(in)
	if err != nil {
		return store.Contact{}, err
	}
	err = s.store.Update(func(st *store.State) error {
		if index < 0 || index >= len(st.Contacts) {
			return ErrContactNotFound
		}
		st.Contacts[index] = contact
		return nil
	})
	if err != nil {
		return store.Contact{}, err
	}
	return contact, nil
}

// Delete removes the contact at index. The cursor is left alone; Next
// normalizes it against the active set on every call.
func (s *Service) Delete(index int) error {
	return s.store.Update(func(st *store.State) error {
		if index < 0 || index >= len(st.Contacts) {
			return ErrContactNotFound
		}
		st.Contacts = append(st.Contacts[:index], st.Contacts[index+1:]...)
		return nil
	})
}

// Next returns the active contact at the rotation cursor and advances the
// persisted cursor by one, modulo the active count.
func (s *Service) Next() (store.Contact, error) {
	var chosen store.Contact
	err := s.store.Update(func(st *store.State) error {
		var active []store.Contact
		for _, c := range st.Contacts {
			if c.Active {
				active = append(active, c)
			}
		}
		if len(active) == 0 {
			return ErrNoActiveContact
		}
		cursor := st.RotationIndex % len(active)
		if cursor < 0 {
			cursor = 0
		}
		chosen = active[cursor]
		st.RotationIndex = (cursor + 1) % len(active)
		return nil
	})
	if err != nil {
		return store.Contact{}, err
	}
	return chosen, nil
}

func build(in Input) (store.Contact, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return store.Contact{}, ErrEmptyNumber
	}
	return store.Contact{Number: number, Label: strings.TrimSpace(in.Label), Active: in.Active}, nil
}
