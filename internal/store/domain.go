package store

import (
	"encoding/json"
	"fmt"
)

// Timestamp layouts used across the persisted document. With-time layouts
// come before date-only ones; consolidation relies on this order.
const (
	LayoutDateTime    = "02/01/2006 15:04"
	LayoutDateTimeSec = "02/01/2006 15:04:05"
	LayoutISODateTime = "2006-01-02 15:04"
	LayoutISOSeconds  = "2006-01-02 15:04:05"
	LayoutDate        = "02/01/2006"
	LayoutISODate     = "2006-01-02"
	LayoutCompetency  = "2006-01"
)

// Sale channels. Legacy records may carry none; Origin() defaults to desktop.
const (
	ChannelDesktop     = "desktop"
	ChannelMobile      = "mobile"
	ChannelWeb         = "web"
	ChannelOnlineOrder = "pedido_online"
)

// Sale types.
const (
	SaleTypeNormal        = "normal"
	SaleTypeComplimentary = "bonificacao"
)

// Consumption types.
const (
	ConsumptionOnSite   = "local"
	ConsumptionDelivery = "entrega"
	ConsumptionInternal = "interno"
)

// Item is a catalog entry keyed by name in State.Catalog.
type Item struct {
	Price float64 `json:"valor"`
	Cost  float64 `json:"custo"`
	Stock int     `json:"estoque"`
}

// Sale is one ledger entry. Optional fields are pointers so that legacy
// records round-trip without gaining keys they never had; any field this
// version does not know about is kept verbatim in Extra.
type Sale struct {
	Date         string
	Item         string
	Quantity     int
	UnitPrice    float64
	Total        float64
	AffectsStock *bool
	Channel      string
	SaleType     string
	Charged      *float64
	Consumption  string
	Competency   string
	OrderID      *int

	Extra map[string]json.RawMessage
}

// ChargedValue returns the amount actually billed. Legacy sales predate the
// valor_cobrado field and fall back to the list total.
func (s Sale) ChargedValue() float64 {
	if s.Charged != nil {
		return *s.Charged
	}
	return s.Total
}

// StockAffected reports whether this sale debited stock; absent means true
// for legacy records.
func (s Sale) StockAffected() bool {
	if s.AffectsStock != nil {
		return *s.AffectsStock
	}
	return true
}

// Origin returns the sale channel, defaulting legacy records to desktop.
func (s Sale) Origin() string {
	if s.Channel == "" {
		return ChannelDesktop
	}
	return s.Channel
}

func (s *Sale) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := []struct {
		key string
		dst any
	}{
		{"data", &s.Date},
		{"espetinho", &s.Item},
		{"quantidade", &s.Quantity},
		{"valor_unitario", &s.UnitPrice},
		{"total", &s.Total},
		{"alterou_estoque", &s.AffectsStock},
		{"origem", &s.Channel},
		{"tipo_venda", &s.SaleType},
		{"valor_cobrado", &s.Charged},
		{"tipo_consumo", &s.Consumption},
		{"competencia", &s.Competency},
		{"pedido_id", &s.OrderID},
	}
	for _, f := range fields {
		if err := popField(raw, f.key, f.dst); err != nil {
			return err
		}
	}
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}

func (s Sale) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+12)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["data"] = s.Date
	out["espetinho"] = s.Item
	out["quantidade"] = s.Quantity
	out["valor_unitario"] = s.UnitPrice
	out["total"] = s.Total
	if s.AffectsStock != nil {
		out["alterou_estoque"] = *s.AffectsStock
	}
	if s.Channel != "" {
		out["origem"] = s.Channel
	}
	if s.SaleType != "" {
		out["tipo_venda"] = s.SaleType
	}
	if s.Charged != nil {
		out["valor_cobrado"] = *s.Charged
	}
	if s.Consumption != "" {
		out["tipo_consumo"] = s.Consumption
	}
	if s.Competency != "" {
		out["competencia"] = s.Competency
	}
	if s.OrderID != nil {
		out["pedido_id"] = *s.OrderID
	}
	return json.Marshal(out)
}

// Expense is an independent ledger entry; like Sale it preserves fields it
// does not model.
type Expense struct {
	Date        string
	Description string
	Amount      float64

	Extra map[string]json.RawMessage
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := popField(raw, "data", &e.Date); err != nil {
		return err
	}
	if err := popField(raw, "descricao", &e.Description); err != nil {
		return err
	}
	if err := popField(raw, "valor", &e.Amount); err != nil {
		return err
	}
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

func (e Expense) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+3)
	for k, v := range e.Extra {
		out[k] = v
	}
	out["data"] = e.Date
	out["descricao"] = e.Description
	out["valor"] = e.Amount
	return json.Marshal(out)
}

func popField(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	delete(raw, key)
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("campo %q: %w", key, err)
	}
	return nil
}

// OrderItem is one line of a customer order.
type OrderItem struct {
	Item      string  `json:"espetinho"`
	Quantity  int     `json:"quantidade"`
	UnitPrice float64 `json:"valor_unitario"`
}

// Order lives in the queue until it is cancelled or reaches the ready
// status, at which point it is converted into sales and removed.
type Order struct {
	ID               int               `json:"id"`
	CreatedAt        string            `json:"criado_em"`
	Customer         string            `json:"cliente"`
	Phone            string            `json:"telefone"`
	Address          string            `json:"endereco"`
	Notes            string            `json:"observacoes"`
	Items            []OrderItem       `json:"itens"`
	Status           string            `json:"status"`
	StatusTimestamps map[string]string `json:"status_timestamps"`
	Total            float64           `json:"total"`
}

// ConsumptionTotals aggregates quantity and charged value for one
// consumption type inside a monthly closing.
type ConsumptionTotals struct {
	Qty   int     `json:"qtd"`
	Value float64 `json:"valor"`
}

// Closing is the cached monthly aggregate, always recomputable from the
// ledgers.
type Closing struct {
	Year               int                          `json:"ano"`
	Month              int                          `json:"mes"`
	MonthName          string                       `json:"nome_mes"`
	TotalCharged       float64                      `json:"total_cobrado"`
	ComplimentaryValue float64                      `json:"total_bonificacoes_valor_tabela"`
	ComplimentaryQty   int                          `json:"qtd_bonificada"`
	ConsumptionByType  map[string]ConsumptionTotals `json:"consumo_por_tipo"`
	CostOfGoodsSold    float64                      `json:"total_custo_vendas"`
	TotalExpenses      float64                      `json:"total_despesas"`
	GrossProfit        float64                      `json:"lucro_bruto"`
	GrossMargin        float64                      `json:"margem_bruta"`
	FinalBalance       float64                      `json:"saldo_final"`
	AverageTicket      float64                      `json:"ticket_medio"`
	SaleCount          int                          `json:"qtd_vendas"`
	ExpenseCount       int                          `json:"qtd_despesas"`
	GeneratedAt        string                       `json:"gerado_em"`
}

// Contact is one entry of the rotating contact-number list.
type Contact struct {
	Number string `json:"number"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// State is the whole persisted document. Every mutation anywhere rewrites
// it to disk in full.
type State struct {
	Sales         []Sale             `json:"vendas"`
	Expenses      []Expense          `json:"despesas"`
	Catalog       map[string]Item    `json:"espetinhos"`
	Orders        []Order            `json:"pedidos"`
	Closings      map[string]Closing `json:"fechamentos_mensais"`
	Contacts      []Contact          `json:"whatsapp_numbers"`
	RotationIndex int                `json:"whatsapp_rotation_index"`
}

// DefaultCatalog returns the seed catalog used when no data file exists.
func DefaultCatalog() map[string]Item {
	return map[string]Item{
		"GADO":               {Price: 6.00, Cost: 4.50},
		"PORCO":              {Price: 6.00, Cost: 4.50},
		"FRANGO":             {Price: 6.00, Cost: 4.50},
		"TULIPA":             {Price: 6.00, Cost: 4.50},
		"CORAÇÃO":            {Price: 6.00, Cost: 4.50},
		"MEDALHÃO DE CARNE":  {Price: 9.00, Cost: 7.41},
		"MEDALHÃO DE FRANGO": {Price: 9.00, Cost: 7.41},
		"QUEIJO":             {Price: 9.00, Cost: 7.41},
		"KAFTA":              {Price: 7.00, Cost: 5.50},
		"LINGUIÇA DEFUMADA":  {Price: 6.00, Cost: 4.50},
		"PÃO DE ALHO":        {Price: 4.00, Cost: 3.00},
		"CAMARÃO":            {Price: 10.00, Cost: 8.00},
	}
}

// DefaultState is the empty document seeded with the default catalog.
func DefaultState() *State {
	return &State{
		Sales:    []Sale{},
		Expenses: []Expense{},
		Catalog:  DefaultCatalog(),
		Orders:   []Order{},
		Closings: map[string]Closing{},
		Contacts: []Contact{},
	}
}

// DecodeDocument parses one persisted document. The legacy key
// fechamentos_mes is accepted as an alias for fechamentos_mensais, and a
// document without an espetinhos key gets the default catalog, as the
// original system did on load.
func DecodeDocument(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Closings == nil {
		var alias struct {
			Closings map[string]Closing `json:"fechamentos_mes"`
		}
		if err := json.Unmarshal(data, &alias); err == nil && alias.Closings != nil {
			st.Closings = alias.Closings
		}
	}
	st.normalize()
	return &st, nil
}

func (st *State) normalize() {
	if st.Catalog == nil {
		st.Catalog = DefaultCatalog()
	}
	if st.Closings == nil {
		st.Closings = map[string]Closing{}
	}
}
