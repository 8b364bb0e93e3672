package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID         uuid.UUID         `json:"id"`
	Sku        string            `json:"sku"`
	Name       string            `json:"name"`
	Category   string            `json:"category,omitempty"`
	Price      decimal.Decimal   `json:"price"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ProductPage is one bounded page of an ordered result sequence. A nil
// NextCursor signals end of stream.
type ProductPage struct {
	Products   []Product `json:"products"`
	NextCursor *string   `json:"nextCursor"`
}
