package request

import (
	"github.com/shopspring/decimal"
)

type CreateProduct struct {
	Sku        string            `validate:"required"      json:"sku"`
	Name       string            `validate:"required"      json:"name"`
	Category   string            `json:"category"`
	Price      decimal.Decimal   `json:"price"`
	Attributes map[string]string `json:"attributes"`
}

// UpdateProduct carries a partial field replacement; nil fields are left
// untouched.
type UpdateProduct struct {
	Sku        *string           `json:"sku"`
	Name       *string           `json:"name"`
	Category   *string           `json:"category"`
	Price      *decimal.Decimal  `json:"price"`
	Attributes map[string]string `json:"attributes"`
}

// SearchProducts is a conjunctive filter: every provided criterion must hold.
type SearchProducts struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	MinPrice   *decimal.Decimal  `json:"minPrice"`
	MaxPrice   *decimal.Decimal  `json:"maxPrice"`
	Cursor     string            `json:"cursor"`
	PageSize   int               `validate:"gte=0" json:"pageSize"`
}
