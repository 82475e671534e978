// Package reports provides read-only aggregations over the sale and
// expense ledgers. Nothing here mutates state.
package reports

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

var (
	// ErrInvalidPeriod signals a missing or malformed period bound.
	ErrInvalidPeriod = httpx.Wrap(httpx.ErrValidation, "Formato de data inválido! Use DD/MM/AAAA")
)

// DailySummary is the current day at a glance.
type DailySummary struct {
	Date      string               `json:"data"`
	SaleCount int                  `json:"qtd_vendas"`
	Revenue   float64              `json:"total_cobrado"`
	Units     int                  `json:"unidades"`
	ByChannel map[string]Aggregate `json:"por_origem"`
	ByItem    map[string]Aggregate `json:"por_espetinho"`
}

// Aggregate accumulates quantity and charged value for one grouping key.
type Aggregate struct {
	Count    int     `json:"qtd_vendas"`
	Quantity int     `json:"quantidade"`
	Revenue  float64 `json:"valor_total"`
}

// ItemTotals is the full per-item breakdown; costs use the catalog's
// current unit cost, matching the closing computation.
type ItemTotals struct {
	Item     string  `json:"espetinho"`
	Count    int     `json:"qtd_vendas"`
	Quantity int     `json:"quantidade"`
	Revenue  float64 `json:"valor_total"`
	Cost     float64 `json:"custo_total"`
	Profit   float64 `json:"lucro"`
}

// PeriodSummary covers an inclusive date range.
type PeriodSummary struct {
	Start        string  `json:"data_inicial"`
	End          string  `json:"data_final"`
	Revenue      float64 `json:"total_vendas"`
	Cost         float64 `json:"total_custo_vendas"`
	Expenses     float64 `json:"total_despesas"`
	GrossProfit  float64 `json:"lucro_bruto"`
	ProfitMargin float64 `json:"margem_lucro"`
	Balance      float64 `json:"saldo"`
	SaleCount    int     `json:"qtd_vendas"`
	ExpenseCount int     `json:"qtd_despesas"`
}

// Service computes the report read models.
type Service struct {
	logger *slog.Logger
	store  *store.Store
	now    func() time.Time
}

// NewService builds Service.
func NewService(logger *slog.Logger, st *store.Store) *Service {
	return &Service{logger: logger, store: st, now: time.Now}
}

// Daily summarizes today's sales, split by channel and by item.
func (s *Service) Daily() DailySummary {
	today := s.now().Format(store.LayoutDate)
	summary := DailySummary{
		Date:      today,
		ByChannel: map[string]Aggregate{},
		ByItem:    map[string]Aggregate{},
	}
	s.store.View(func(st *store.State) {
		for _, sale := range st.Sales {
			if !strings.HasPrefix(sale.Date, today) {
				continue
			}
			charged := sale.ChargedValue()
			summary.SaleCount++
			summary.Units += sale.Quantity
			summary.Revenue += charged
			accumulate(summary.ByChannel, sale.Origin(), sale.Quantity, charged)
			accumulate(summary.ByItem, sale.Item, sale.Quantity, charged)
		}
	})
	return summary
}

// PerItem totals the whole ledger per item, most-sold first.
func (s *Service) PerItem() []ItemTotals {
	byItem := map[string]*ItemTotals{}
	s.store.View(func(st *store.State) {
		for _, sale := range st.Sales {
			totals, ok := byItem[sale.Item]
			if !ok {
				totals = &ItemTotals{Item: sale.Item}
				byItem[sale.Item] = totals
			}
			totals.Count++
			totals.Quantity += sale.Quantity
			totals.Revenue += sale.ChargedValue()
			if item, found := st.Catalog[sale.Item]; found {
				totals.Cost += item.Cost * float64(sale.Quantity)
			}
		}
	})
	out := make([]ItemTotals, 0, len(byItem))
	for _, totals := range byItem {
		totals.Profit = totals.Revenue - totals.Cost
		out = append(out, *totals)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Item < out[j].Item
	})
	return out
}

// PerChannel totals the whole ledger per sale channel.
func (s *Service) PerChannel() map[string]Aggregate {
	byChannel := map[string]Aggregate{}
	s.store.View(func(st *store.State) {
		for _, sale := range st.Sales {
			accumulate(byChannel, sale.Origin(), sale.Quantity, sale.ChargedValue())
		}
	})
	return byChannel
}

// Period summarizes the inclusive range [start, end], both DD/MM/YYYY.
// Records whose date does not parse are skipped, as the range filter has
// always done.
func (s *Service) Period(start, end string) (PeriodSummary, error) {
	from, err := time.ParseInLocation(store.LayoutDate, start, time.Local)
	if err != nil {
		return PeriodSummary{}, ErrInvalidPeriod
	}
	to, err := time.ParseInLocation(store.LayoutDate, end, time.Local)
	if err != nil {
		return PeriodSummary{}, ErrInvalidPeriod
	}

	summary := PeriodSummary{Start: start, End: end}
	s.store.View(func(st *store.State) {
		for _, sale := range st.Sales {
			if !inRange(sale.Date, from, to) {
				continue
			}
			summary.SaleCount++
			summary.Revenue += sale.ChargedValue()
			if item, ok := st.Catalog[sale.Item]; ok {
				summary.Cost += item.Cost * float64(sale.Quantity)
			}
		}
		for _, exp := range st.Expenses {
			if !inRange(exp.Date, from, to) {
				continue
			}
			summary.ExpenseCount++
			summary.Expenses += exp.Amount
		}
	})

	summary.GrossProfit = summary.Revenue - summary.Cost
	if summary.Revenue > 0 {
		summary.ProfitMargin = summary.GrossProfit / summary.Revenue * 100
	}
	summary.Balance = summary.Revenue - summary.Expenses
	return summary, nil
}

// Top returns the limit best-selling items by quantity.
func (s *Service) Top(limit int) []ItemTotals {
	if limit <= 0 {
		limit = 5
	}
	all := s.PerItem()
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

func accumulate(m map[string]Aggregate, key string, qty int, value float64) {
	agg := m[key]
	agg.Count++
	agg.Quantity += qty
	agg.Revenue += value
	m[key] = agg
}

func inRange(date string, from, to time.Time) bool {
	day, _, _ := strings.Cut(date, " ")
	t, err := time.ParseInLocation(store.LayoutDate, day, time.Local)
	if err != nil {
		return false
	}
	return !t.Before(from) && !t.After(to)
}
