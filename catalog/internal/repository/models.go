package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Product struct {
	ID         uuid.UUID
	Sku        string
	Name       string
	Category   string
	Price      pgtype.Numeric
	Attributes map[string]string
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
	DeletedAt  pgtype.Timestamptz
}
