package sales

import (
	"fmt"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

var (
	// ErrSaleNotFound indicates an unknown sale index.
	ErrSaleNotFound = httpx.Wrap(httpx.ErrNotFound, "Venda não encontrada")
	// ErrItemNotFound indicates the referenced catalog item does not exist.
	ErrItemNotFound = httpx.Wrap(httpx.ErrNotFound, "Espetinho não encontrado")
	// ErrInvalidQuantity rejects non-positive quantities.
	ErrInvalidQuantity = httpx.Wrap(httpx.ErrValidation, "Quantidade deve ser maior que zero")
	// ErrInvalidDate rejects timestamps outside the DD/MM/YYYY HH:MM format.
	ErrInvalidDate = httpx.Wrap(httpx.ErrValidation, "Formato de data inválido! Use DD/MM/AAAA HH:MM")
)

// InsufficientStockError reports an oversell attempt on the interactive
// path, carrying how many units are actually available.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente! Disponível: %d unidades", e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return httpx.ErrValidation }

// RecordInput describes a new sale. Zero values fall back to the defaults
// of the interactive path: stock-affecting, normal, on-site, now.
type RecordInput struct {
	Item         string
	Quantity     int
	UnitPrice    *float64 // nil: use the catalog's current price
	AffectsStock *bool    // nil: true
	SaleType     string   // nil/"": normal
	Consumption  string   // "": local
	Channel      string   // "": desktop
	Timestamp    string   // "": now, else DD/MM/YYYY HH:MM
}

// EditInput replaces the editable fields of an existing sale.
type EditInput struct {
	Timestamp string
	Item      string
	Quantity  int
	UnitPrice float64
}
