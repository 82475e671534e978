// Package consol merges secondary JSON snapshots into the current state,
// deduplicating sales and expenses by composite key. Stock counts are never
// imported from a secondary document.
package consol

import (
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/buteco-pos/buteco-pos/internal/store"
)

// Document is one uploaded secondary snapshot.
type Document struct {
	Name string
	Data []byte
}

// Result summarizes a consolidation run.
type Result struct {
	Documents     int    `json:"arquivos_processados"`
	SalesAdded    int    `json:"vendas_adicionadas"`
	ExpensesAdded int    `json:"despesas_adicionadas"`
	TotalSales    int    `json:"total_vendas"`
	TotalExpenses int    `json:"total_despesas"`
	Backup        string `json:"backup"`
}

// saleKey is the dedup identity of a sale. The channel is the raw stored
// value (not the desktop default) and a missing order id is distinct from
// order id zero, exactly as the tuples were built historically.
type saleKey struct {
	date     string
	item     string
	qty      int
	unit     float64
	total    float64
	channel  string
	orderID  int
	hasOrder bool
}

type expenseKey struct {
	date   string
	desc   string
	amount float64
}

// Service runs consolidations over the shared store.
type Service struct {
	logger *slog.Logger
	store  *store.Store
}

// NewService builds Service.
func NewService(logger *slog.Logger, st *store.Store) *Service {
	return &Service{logger: logger, store: st}
}

// Consolidate merges the documents into the current state, in the order
// given. A backup is attempted first; its failure is logged and the merge
// proceeds, as it always has. A document that fails to parse is logged and
// skipped; the rest still merge.
func (s *Service) Consolidate(docs []Document) (Result, error) {
	var res Result

	backup, err := s.store.Backup("antes_consolidacao")
	if err != nil {
		s.logger.Warn("backup antes da consolidação falhou", slog.Any("error", err))
	}
	res.Backup = backup

	err = s.store.Update(func(st *store.State) error {
		saleKeys := make(map[saleKey]struct{}, len(st.Sales))
		for _, sale := range st.Sales {
			saleKeys[saleKeyOf(sale)] = struct{}{}
		}
		expenseKeys := make(map[expenseKey]struct{}, len(st.Expenses))
		for _, exp := range st.Expenses {
			expenseKeys[expenseKeyOf(exp)] = struct{}{}
		}

		for _, doc := range docs {
			sec, err := decodeSecondary(doc.Data)
			if err != nil {
				s.logger.Error("arquivo secundário inválido, ignorado",
					slog.String("arquivo", doc.Name), slog.Any("error", err))
				continue
			}

			for _, sale := range sec.Sales {
				if sale.Date == "" {
					continue
				}
				key := saleKeyOf(sale)
				if _, dup := saleKeys[key]; dup {
					continue
				}
				st.Sales = append(st.Sales, sale)
				saleKeys[key] = struct{}{}
				res.SalesAdded++
			}

			for _, exp := range sec.Expenses {
				if exp.Date == "" || exp.Description == "" {
					continue
				}
				key := expenseKeyOf(exp)
				if _, dup := expenseKeys[key]; dup {
					continue
				}
				st.Expenses = append(st.Expenses, exp)
				expenseKeys[key] = struct{}{}
				res.ExpensesAdded++
			}

			// secondary closings only fill competencies the primary lacks
			for comp, closing := range sec.Closings {
				if _, exists := st.Closings[comp]; !exists {
					st.Closings[comp] = closing
				}
			}

			// new item names arrive with price and cost but never stock;
			// existing items are left entirely alone
			for name, item := range sec.Catalog {
				if _, exists := st.Catalog[name]; exists {
					continue
				}
				st.Catalog[name] = store.Item{Price: item.Price, Cost: item.Cost, Stock: 0}
			}

			res.Documents++
		}

		sort.SliceStable(st.Sales, func(i, j int) bool {
			return parseWhen(st.Sales[i].Date).Before(parseWhen(st.Sales[j].Date))
		})
		sort.SliceStable(st.Expenses, func(i, j int) bool {
			return parseWhen(st.Expenses[i].Date).Before(parseWhen(st.Expenses[j].Date))
		})

		res.TotalSales = len(st.Sales)
		res.TotalExpenses = len(st.Expenses)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func saleKeyOf(s store.Sale) saleKey {
	k := saleKey{
		date:    s.Date,
		item:    s.Item,
		qty:     s.Quantity,
		unit:    s.UnitPrice,
		total:   s.Total,
		channel: s.Channel,
	}
	if s.OrderID != nil {
		k.orderID = *s.OrderID
		k.hasOrder = true
	}
	return k
}

func expenseKeyOf(e store.Expense) expenseKey {
	return expenseKey{date: e.Date, desc: e.Description, amount: e.Amount}
}

// decodeSecondary parses an uploaded snapshot without injecting the default
// catalog: a secondary with no espetinhos key contributes no items.
func decodeSecondary(data []byte) (*store.State, error) {
	var st store.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Closings == nil {
		var alias struct {
			Closings map[string]store.Closing `json:"fechamentos_mes"`
		}
		if err := json.Unmarshal(data, &alias); err == nil {
			st.Closings = alias.Closings
		}
	}
	return &st, nil
}

// timestampLayouts is tried in order: with-time formats first, then
// date-only.
var timestampLayouts = []string{
	store.LayoutDateTime,
	store.LayoutDateTimeSec,
	store.LayoutISODateTime,
	store.LayoutISOSeconds,
	store.LayoutDate,
	store.LayoutISODate,
}

// parseWhen parses a record timestamp for ordering. Total failure yields
// the zero time, so unparseable entries sort first; that quirk is part of
// the observed ordering and stays.
func parseWhen(date string) time.Time {
	if date == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, date, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
