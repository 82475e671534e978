// Package orders runs the order queue: creation, the status machine and the
// conversion of ready orders into ledger sales.
package orders

import (
	"log/slog"
	"time"

	"github.com/buteco-pos/buteco-pos/internal/store"
)

// Service coordinates order operations over the shared store.
type Service struct {
	logger *slog.Logger
	store  *store.Store
	now    func() time.Time
}

// NewService builds Service.
func NewService(logger *slog.Logger, st *store.Store) *Service {
	return &Service{logger: logger, store: st, now: time.Now}
}

// List returns the current queue.
func (s *Service) List() []store.Order {
	var out []store.Order
	s.store.View(func(st *store.State) {
		out = make([]store.Order, len(st.Orders))
		copy(out, st.Orders)
	})
	return out
}

// Create validates the submission against the catalog, freezes line prices
// and enqueues the order as pending.
func (s *Service) Create(in CreateInput) (store.Order, error) {
	if len(in.Items) == 0 {
		return store.Order{}, ErrEmptyOrder
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return store.Order{}, ErrInvalidQuantity
		}
	}
	now := s.now().Format(store.LayoutDateTime)
	var created store.Order
	err := s.store.Update(func(st *store.State) error {
		items := make([]store.OrderItem, 0, len(in.Items))
		total := 0.0
		for _, line := range in.Items {
			item, ok := st.Catalog[line.Item]
			if !ok {
				return ErrItemNotFound
			}
			items = append(items, store.OrderItem{
				Item:      line.Item,
				Quantity:  line.Quantity,
				UnitPrice: item.Price,
			})
			total += float64(line.Quantity) * item.Price
		}
		created = store.Order{
			ID:               nextID(st.Orders),
			CreatedAt:        now,
			Customer:         in.Customer,
			Phone:            in.Phone,
			Address:          in.Address,
			Notes:            in.Notes,
			Items:            items,
			Status:           string(StatusPending),
			StatusTimestamps: map[string]string{string(StatusPending): now},
			Total:            total,
		}
		st.Orders = append(st.Orders, created)
		return nil
	})
	if err != nil {
		return store.Order{}, err
	}
	return created, nil
}

// SetStatus moves an order through the machine, stamping the transition
// time. Reaching ready converts the order into one sale per line and
// removes it from the queue; the returned results say what happened to each
// line.
func (s *Service) SetStatus(id int, status Status) (store.Order, []LineResult, error) {
	if !status.Settable() {
		return store.Order{}, nil, ErrInvalidStatus
	}
	now := s.now()
	stamp := now.Format(store.LayoutDateTime)
	var (
		updated store.Order
		results []LineResult
	)
	err := s.store.Update(func(st *store.State) error {
		idx := -1
		for i := range st.Orders {
			if st.Orders[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrOrderNotFound
		}
		order := st.Orders[idx]
		order.Status = string(status)
		if order.StatusTimestamps == nil {
			order.StatusTimestamps = map[string]string{}
		}
		order.StatusTimestamps[string(status)] = stamp

		if status != StatusReady {
			st.Orders[idx] = order
			updated = order
			return nil
		}

		results = s.convert(st, order, now)
		st.Orders = append(st.Orders[:idx], st.Orders[idx+1:]...)
		updated = order
		return nil
	})
	if err != nil {
		return store.Order{}, nil, err
	}
	return updated, results, nil
}

// Delete cancels an order from any non-terminal state, with no sale side
// effects.
func (s *Service) Delete(id int) error {
	return s.store.Update(func(st *store.State) error {
		for i := range st.Orders {
			if st.Orders[i].ID == id {
				st.Orders = append(st.Orders[:i], st.Orders[i+1:]...)
				return nil
			}
		}
		return ErrOrderNotFound
	})
}

// convert materializes one sale per line. A line whose item has left the
// catalog is logged and skipped; lines already converted stay committed.
// Stock is clamped at zero here, unlike the interactive sale path which
// rejects oversell — the two policies differ on purpose.
func (s *Service) convert(st *store.State, order store.Order, now time.Time) []LineResult {
	results := make([]LineResult, 0, len(order.Items))
	stamp := now.Format(store.LayoutDateTime)
	competency := now.Format(store.LayoutCompetency)
	for _, line := range order.Items {
		item, ok := st.Catalog[line.Item]
		if !ok {
			s.logger.Warn("pedido pronto com espetinho fora do catálogo, item ignorado",
				slog.Int("pedido", order.ID), slog.String("espetinho", line.Item))
			results = append(results, LineResult{
				Item:     line.Item,
				Quantity: line.Quantity,
				Reason:   "espetinho não está mais no catálogo",
			})
			continue
		}

		total := float64(line.Quantity) * line.UnitPrice
		charged := total
		affects := true
		orderID := order.ID
		st.Sales = append(st.Sales, store.Sale{
			Date:         stamp,
			Item:         line.Item,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			Total:        total,
			AffectsStock: &affects,
			Channel:      store.ChannelOnlineOrder,
			SaleType:     store.SaleTypeNormal,
			Charged:      &charged,
			Consumption:  store.ConsumptionDelivery,
			Competency:   competency,
			OrderID:      &orderID,
		})

		item.Stock -= line.Quantity
		if item.Stock < 0 {
			item.Stock = 0
		}
		st.Catalog[line.Item] = item

		results = append(results, LineResult{Item: line.Item, Quantity: line.Quantity, Converted: true})
	}
	return results
}

func nextID(orders []store.Order) int {
	max := 0
	for _, o := range orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}
