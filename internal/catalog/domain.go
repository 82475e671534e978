package catalog

import (
	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
)

var (
	// ErrDuplicateItem indicates a create with an existing name.
	ErrDuplicateItem = httpx.Wrap(httpx.ErrDuplicate, "Espetinho já cadastrado")
	// ErrItemNotFound indicates an unknown item name.
	ErrItemNotFound = httpx.Wrap(httpx.ErrNotFound, "Espetinho não encontrado")
	// ErrNegativePrice rejects a negative unit price.
	ErrNegativePrice = httpx.Wrap(httpx.ErrValidation, "Valor não pode ser negativo")
	// ErrNegativeCost rejects a negative unit cost.
	ErrNegativeCost = httpx.Wrap(httpx.ErrValidation, "Custo não pode ser negativo")
	// ErrEmptyName rejects a blank item name.
	ErrEmptyName = httpx.Wrap(httpx.ErrValidation, "Nome do espetinho é obrigatório")
)

// ItemView is the read model for one catalog entry with derived pricing
// metrics.
type ItemView struct {
	Name   string  `json:"nome"`
	Price  float64 `json:"valor"`
	Cost   float64 `json:"custo"`
	Stock  int     `json:"estoque"`
	Profit float64 `json:"lucro"`
	Markup float64 `json:"markup"`
	Margin float64 `json:"margem"`
}

// EditInput carries the optional fields of a partial edit; nil fields are
// left untouched.
type EditInput struct {
	Price *float64
	Cost  *float64
	Stock *int
}

func markup(profit, cost float64) float64 {
	if cost == 0 {
		return 0
	}
	return profit / cost * 100
}

func margin(profit, price float64) float64 {
	if price == 0 {
		return 0
	}
	return profit / price * 100
}
