// Package sales keeps the sale ledger: recording, editing, deleting and the
// read queries the dashboards are built on.
package sales

import (
	"log/slog"
	"strings"
	"time"

	"github.com/buteco-pos/buteco-pos/internal/store"
)

// Service coordinates ledger operations over the shared store.
type Service struct {
	logger *slog.Logger
	store  *store.Store
	now    func() time.Time
}

// NewService builds Service.
func NewService(logger *slog.Logger, st *store.Store) *Service {
	return &Service{logger: logger, store: st, now: time.Now}
}

// Record validates and appends one sale, debiting stock when asked to. The
// total is frozen from the unit price in effect now; later catalog edits do
// not touch it.
func (s *Service) Record(in RecordInput) (store.Sale, error) {
	if in.Quantity <= 0 {
		return store.Sale{}, ErrInvalidQuantity
	}

	affects := true
	if in.AffectsStock != nil {
		affects = *in.AffectsStock
	}
	saleType := in.SaleType
	if saleType == "" {
		saleType = store.SaleTypeNormal
	}
	consumption := in.Consumption
	if consumption == "" {
		consumption = store.ConsumptionOnSite
	}
	channel := in.Channel
	if channel == "" {
		channel = store.ChannelDesktop
	}

	var when time.Time
	timestamp := strings.TrimSpace(in.Timestamp)
	if timestamp == "" {
		when = s.now()
		timestamp = when.Format(store.LayoutDateTime)
	} else {
		parsed, err := time.ParseInLocation(store.LayoutDateTime, timestamp, time.Local)
		if err != nil {
			return store.Sale{}, ErrInvalidDate
		}
		when = parsed
	}

	var created store.Sale
	err := s.store.Update(func(st *store.State) error {
		item, ok := st.Catalog[in.Item]
		if !ok {
			return ErrItemNotFound
		}
		if affects && item.Stock < in.Quantity {
			return &InsufficientStockError{Available: item.Stock}
		}

		unitPrice := item.Price
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		total := float64(in.Quantity) * unitPrice
		charged := total
		if saleType == store.SaleTypeComplimentary {
			charged = 0
		}

		created = store.Sale{
			Date:         timestamp,
			Item:         in.Item,
			Quantity:     in.Quantity,
			UnitPrice:    unitPrice,
			Total:        total,
			AffectsStock: &affects,
			Channel:      channel,
			SaleType:     saleType,
			Charged:      &charged,
			Consumption:  consumption,
			Competency:   when.Format(store.LayoutCompetency),
		}
		st.Sales = append(st.Sales, created)

		if affects {
			item.Stock -= in.Quantity
			st.Catalog[in.Item] = item
		}
		return nil
	})
	if err != nil {
		return store.Sale{}, err
	}
	return created, nil
}

// All returns the full ledger. Legacy records without a channel come back
// tagged as desktop, matching what every consumer already assumed.
func (s *Service) All() []store.Sale {
	var out []store.Sale
	s.store.View(func(st *store.State) {
		out = make([]store.Sale, len(st.Sales))
		copy(out, st.Sales)
	})
	for i := range out {
		out[i].Channel = out[i].Origin()
	}
	return out
}

// Today returns the sales whose timestamp starts with today's date.
func (s *Service) Today() []store.Sale {
	today := s.now().Format(store.LayoutDate)
	var out []store.Sale
	s.store.View(func(st *store.State) {
		for _, sale := range st.Sales {
			if strings.HasPrefix(sale.Date, today) {
				sale.Channel = sale.Origin()
				out = append(out, sale)
			}
		}
	})
	return out
}

// DeleteToday removes the idx-th of today's sales (the order the mobile
// client displays them in), restoring stock when the sale had debited it.
func (s *Service) DeleteToday(idx int) (store.Sale, error) {
	today := s.now().Format(store.LayoutDate)
	var removed store.Sale
	err := s.store.Update(func(st *store.State) error {
		real, err := resolveTodayIndex(st.Sales, today, idx)
		if err != nil {
			return err
		}
		removed = st.Sales[real]
		if removed.StockAffected() {
			if item, ok := st.Catalog[removed.Item]; ok {
				item.Stock += removed.Quantity
				st.Catalog[removed.Item] = item
			} else {
				s.logger.Warn("venda excluída de espetinho fora do catálogo, estoque não devolvido",
					slog.String("espetinho", removed.Item))
			}
		}
		st.Sales = append(st.Sales[:real], st.Sales[real+1:]...)
		return nil
	})
	if err != nil {
		return store.Sale{}, err
	}
	return removed, nil
}

// EditToday replaces the idx-th of today's sales. The stock delta between
// old and new quantity is applied to the (possibly new) item when the sale
// affects stock. The edited record keeps only the core fields; the charged
// value of an edited sale falls back to its list total.
func (s *Service) EditToday(idx int, in EditInput) (store.Sale, error) {
	if in.Quantity <= 0 {
		return store.Sale{}, ErrInvalidQuantity
	}
	timestamp := strings.TrimSpace(in.Timestamp)
	if _, err := time.ParseInLocation(store.LayoutDateTime, timestamp, time.Local); err != nil {
		return store.Sale{}, ErrInvalidDate
	}
	today := s.now().Format(store.LayoutDate)
	var edited store.Sale
	err := s.store.Update(func(st *store.State) error {
		real, err := resolveTodayIndex(st.Sales, today, idx)
		if err != nil {
			return err
		}
		old := st.Sales[real]
		if _, ok := st.Catalog[in.Item]; !ok {
			return ErrItemNotFound
		}
		affects := old.StockAffected()
		if affects {
			delta := in.Quantity - old.Quantity
			item := st.Catalog[in.Item]
			if item.Stock < delta {
				return &InsufficientStockError{Available: item.Stock}
			}
			item.Stock -= delta
			st.Catalog[in.Item] = item
		}
		edited = store.Sale{
			Date:         timestamp,
			Item:         in.Item,
			Quantity:     in.Quantity,
			UnitPrice:    in.UnitPrice,
			Total:        float64(in.Quantity) * in.UnitPrice,
			AffectsStock: &affects,
		}
		st.Sales[real] = edited
		return nil
	})
	if err != nil {
		return store.Sale{}, err
	}
	return edited, nil
}

func resolveTodayIndex(sales []store.Sale, today string, idx int) (int, error) {
	if idx < 0 {
		return 0, ErrSaleNotFound
	}
	seen := 0
	for i, sale := range sales {
		if !strings.HasPrefix(sale.Date, today) {
			continue
		}
		if seen == idx {
			return i, nil
		}
		seen++
	}
	return 0, ErrSaleNotFound
}
