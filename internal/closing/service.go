// Package closing computes and stores monthly closings keyed by competency
// ("YYYY-MM").
package closing

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

var (
	// ErrInvalidCompetency signals a competency outside the YYYY-MM shape.
	ErrInvalidCompetency = httpx.Wrap(httpx.ErrValidation, "Competência inválida! Use AAAA-MM")
)

// monthNames holds pt-BR month names indexed by month-1.
var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Entry pairs a competency with its stored closing for sorted listings.
type Entry struct {
	Competency string `json:"competencia"`
	store.Closing
}

// Service generates monthly closings over the shared store.
type Service struct {
	logger *slog.Logger
	store  *store.Store
	now    func() time.Time
}

// NewService builds Service.
func NewService(logger *slog.Logger, st *store.Store) *Service {
	return &Service{logger: logger, store: st, now: time.Now}
}

// CloseMonth computes the closing for the competency and stores it,
// overwriting any previous closing for the same month.
func (s *Service) CloseMonth(competency string) (store.Closing, error) {
	ref, err := time.Parse(store.LayoutCompetency, competency)
	if err != nil {
		return store.Closing{}, ErrInvalidCompetency
	}
	year, month := ref.Year(), int(ref.Month())

	var closing store.Closing
	err = s.store.Update(func(st *store.State) error {
		var sales []store.Sale
		for _, sale := range st.Sales {
			if inCompetency(sale, competency, year, month) {
				sales = append(sales, sale)
			}
		}
		var expenses []store.Expense
		for _, exp := range st.Expenses {
			if t := parseDay(exp.Date); !t.IsZero() && t.Year() == year && int(t.Month()) == month {
				expenses = append(expenses, exp)
			}
		}

		var totalCharged, compValue, totalCOGS, totalExpenses float64
		var compQty, paidCount int
		byType := map[string]store.ConsumptionTotals{
			store.ConsumptionOnSite:   {},
			store.ConsumptionDelivery: {},
			store.ConsumptionInternal: {},
		}
		for _, sale := range sales {
			charged := sale.ChargedValue()
			totalCharged += charged
			if charged > 0 {
				paidCount++
			}
			if sale.SaleType == store.SaleTypeComplimentary {
				compValue += sale.Total
				compQty += sale.Quantity
			}
			kind := sale.Consumption
			if kind == "" {
				kind = store.ConsumptionOnSite
			}
			if totals, ok := byType[kind]; ok {
				totals.Qty += sale.Quantity
				totals.Value += charged
				byType[kind] = totals
			}
			// costs come from the catalog as it stands today, not from
			// the sale's moment
			if item, ok := st.Catalog[sale.Item]; ok {
				totalCOGS += item.Cost * float64(sale.Quantity)
			}
		}
		for _, exp := range expenses {
			totalExpenses += exp.Amount
		}

		grossProfit := totalCharged - totalCOGS
		var grossMargin, avgTicket float64
		if totalCharged > 0 {
			grossMargin = grossProfit / totalCharged * 100
		}
		if paidCount > 0 {
			avgTicket = totalCharged / float64(paidCount)
		}

		closing = store.Closing{
			Year:               year,
			Month:              month,
			MonthName:          monthNames[month-1],
			TotalCharged:       totalCharged,
			ComplimentaryValue: compValue,
			ComplimentaryQty:   compQty,
			ConsumptionByType:  byType,
			CostOfGoodsSold:    totalCOGS,
			TotalExpenses:      totalExpenses,
			GrossProfit:        grossProfit,
			GrossMargin:        grossMargin,
			FinalBalance:       totalCharged - totalExpenses,
			AverageTicket:      avgTicket,
			SaleCount:          len(sales),
			ExpenseCount:       len(expenses),
			GeneratedAt:        s.now().Format(store.LayoutDateTime),
		}
		if st.Closings == nil {
			st.Closings = map[string]store.Closing{}
		}
		st.Closings[competency] = closing
		return nil
	})
	if err != nil {
		return store.Closing{}, err
	}

	s.logger.Info("fechamento mensal gerado",
		slog.String("competencia", competency),
		slog.Int("vendas", closing.SaleCount),
		slog.String("total_cobrado", fmt.Sprintf("%.2f", closing.TotalCharged)))
	return closing, nil
}

// ListClosings returns every stored closing sorted by competency.
func (s *Service) ListClosings() []Entry {
	var entries []Entry
	s.store.View(func(st *store.State) {
		for comp, closing := range st.Closings {
			entries = append(entries, Entry{Competency: comp, Closing: closing})
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Competency < entries[j].Competency
	})
	return entries
}

// inCompetency matches by the stored competency when present and falls back
// to parsing the date for records written before the field existed.
func inCompetency(sale store.Sale, competency string, year, month int) bool {
	if sale.Competency != "" {
		return sale.Competency == competency
	}
	t := parseDay(sale.Date)
	return !t.IsZero() && t.Year() == year && int(t.Month()) == month
}

func parseDay(date string) time.Time {
	day, _, _ := strings.Cut(date, " ")
	t, err := time.ParseInLocation(store.LayoutDate, day, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
