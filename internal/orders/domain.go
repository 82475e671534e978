package orders

import (
	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

// Status is the lifecycle position of a customer order.
type Status string

const (
	// StatusPending is the state an order is born in.
	StatusPending Status = "pendente"
	// StatusAccepted means the stand has taken the order.
	StatusAccepted Status = "aceito"
	// StatusPreparing means it is on the grill.
	StatusPreparing Status = "preparando"
	// StatusReady is terminal: the order is converted into sales and leaves
	// the queue.
	StatusReady Status = "pronto"
)

// Settable reports whether a client may move an order into this status.
// Pending is birth-only.
func (s Status) Settable() bool {
	switch s {
	case StatusAccepted, StatusPreparing, StatusReady:
		return true
	default:
		return false
	}
}

var (
	// ErrOrderNotFound indicates an unknown order id.
	ErrOrderNotFound = httpx.Wrap(httpx.ErrNotFound, "Pedido não encontrado")
	// ErrInvalidStatus rejects a status outside the settable set.
	ErrInvalidStatus = httpx.Wrap(httpx.ErrValidation, "Status inválido")
	// ErrEmptyOrder rejects an order with no line items.
	ErrEmptyOrder = httpx.Wrap(httpx.ErrValidation, "Pedido sem itens")
	// ErrInvalidQuantity rejects non-positive line quantities.
	ErrInvalidQuantity = httpx.Wrap(httpx.ErrValidation, "Quantidade deve ser maior que zero")
	// ErrItemNotFound indicates a line references an unknown catalog item at
	// creation time.
	ErrItemNotFound = httpx.Wrap(httpx.ErrNotFound, "Espetinho não encontrado")
)

// LineInput is one requested line of a new order.
type LineInput struct {
	Item     string
	Quantity int
}

// CreateInput describes a customer submission.
type CreateInput struct {
	Customer string
	Phone    string
	Address  string
	Notes    string
	Items    []LineInput
}

// LineResult reports the fate of one order line during the ready
// conversion. Conversion is best effort per line; earlier lines stay
// committed when a later one is skipped.
type LineResult struct {
	Item      string `json:"espetinho"`
	Quantity  int    `json:"quantidade"`
	Converted bool   `json:"convertido"`
	Reason    string `json:"motivo,omitempty"`
}
