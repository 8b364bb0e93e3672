package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Alturino/catalog/pkg/response"
)

func (p Product) Response() response.Product {
	return response.Product{
		ID:         p.ID,
		Sku:        p.Sku,
		Name:       p.Name,
		Category:   p.Category,
		Price:      decimal.NewFromBigInt(p.Price.Int, p.Price.Exp),
		Attributes: p.Attributes,
		CreatedAt:  p.CreatedAt.Time,
		UpdatedAt:  p.UpdatedAt.Time,
	}
}

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}
