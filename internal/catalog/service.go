// Package catalog manages the item catalog: prices, costs and stock counts.
package catalog

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/buteco-pos/buteco-pos/internal/store"
)

// Service coordinates catalog operations over the shared store.
type Service struct {
	logger *slog.Logger
	store  *store.Store
	coll   *collate.Collator
}

// NewService builds Service.
func NewService(logger *slog.Logger, st *store.Store) *Service {
	return &Service{
		logger: logger,
		store:  st,
		coll:   collate.New(language.BrazilianPortuguese),
	}
}

// List returns every item with derived metrics, ordered by name with pt-BR
// collation so accented names sort where a human expects them.
func (s *Service) List() []ItemView {
	var views []ItemView
	s.store.View(func(st *store.State) {
		views = make([]ItemView, 0, len(st.Catalog))
		for name, item := range st.Catalog {
			views = append(views, view(name, item))
		}
	})
	sort.Slice(views, func(i, j int) bool {
		return s.coll.CompareString(views[i].Name, views[j].Name) < 0
	})
	return views
}

// Get returns one item by name.
func (s *Service) Get(name string) (ItemView, error) {
	var (
		v  ItemView
		ok bool
	)
	s.store.View(func(st *store.State) {
		var item store.Item
		item, ok = st.Catalog[name]
		if ok {
			v = view(name, item)
		}
	})
	if !ok {
		return ItemView{}, ErrItemNotFound
	}
	return v, nil
}

// Create adds a new item. The name is the unique key.
func (s *Service) Create(name string, price, cost float64, stock int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if price < 0 {
		return ErrNegativePrice
	}
	if cost < 0 {
		return ErrNegativeCost
	}
	return s.store.Update(func(st *store.State) error {
		if _, exists := st.Catalog[name]; exists {
			return ErrDuplicateItem
		}
		st.Catalog[name] = store.Item{Price: price, Cost: cost, Stock: stock}
		return nil
	})
}

// Edit applies the provided fields to an existing item.
func (s *Service) Edit(name string, in EditInput) error {
	if in.Price != nil && *in.Price < 0 {
		return ErrNegativePrice
	}
	if in.Cost != nil && *in.Cost < 0 {
		return ErrNegativeCost
	}
	return s.store.Update(func(st *store.State) error {
		item, ok := st.Catalog[name]
		if !ok {
			return ErrItemNotFound
		}
		if in.Price != nil {
			item.Price = *in.Price
		}
		if in.Cost != nil {
			item.Cost = *in.Cost
		}
		if in.Stock != nil {
			item.Stock = *in.Stock
		}
		st.Catalog[name] = item
		return nil
	})
}

// Delete removes an item. Historic sales keep referencing the name; nothing
// cascades.
func (s *Service) Delete(name string) error {
	return s.store.Update(func(st *store.State) error {
		if _, ok := st.Catalog[name]; !ok {
			return ErrItemNotFound
		}
		delete(st.Catalog, name)
		return nil
	})
}

// AddStock adds qty to the item's stock. Negative deltas are allowed and may
// drive stock below zero; the manual path never had a floor and keeps none.
func (s *Service) AddStock(name string, qty int) (int, error) {
	var after int
	err := s.store.Update(func(st *store.State) error {
		item, ok := st.Catalog[name]
		if !ok {
			return ErrItemNotFound
		}
		item.Stock += qty
		st.Catalog[name] = item
		after = item.Stock
		return nil
	})
	return after, err
}

// UpdateCost replaces the item's unit cost.
func (s *Service) UpdateCost(name string, cost float64) error {
	if cost < 0 {
		return ErrNegativeCost
	}
	return s.store.Update(func(st *store.State) error {
		item, ok := st.Catalog[name]
		if !ok {
			return ErrItemNotFound
		}
		item.Cost = cost
		st.Catalog[name] = item
		return nil
	})
}

// ZeroStock resets one item's stock to zero.
func (s *Service) ZeroStock(name string) error {
	return s.store.Update(func(st *store.State) error {
		item, ok := st.Catalog[name]
		if !ok {
			return ErrItemNotFound
		}
		item.Stock = 0
		st.Catalog[name] = item
		return nil
	})
}

// ZeroAllStock resets every item's stock to zero.
func (s *Service) ZeroAllStock() error {
	return s.store.Update(func(st *store.State) error {
		for name, item := range st.Catalog {
			item.Stock = 0
			st.Catalog[name] = item
		}
		return nil
	})
}

func view(name string, item store.Item) ItemView {
	profit := item.Price - item.Cost
	return ItemView{
		Name:   name,
		Price:  item.Price,
		Cost:   item.Cost,
		Stock:  item.Stock,
		Profit: profit,
		Markup: markup(profit, item.Cost),
		Margin: margin(profit, item.Price),
	}
}
