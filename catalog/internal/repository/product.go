package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	apperrors "github.com/Alturino/catalog/internal/errors"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const productColumns = `id, sku, name, category, price, attributes, created_at, updated_at, deleted_at`

func scanProduct(row pgx.Row) (Product, error) {
	p := Product{}
	err := row.Scan(
		&p.ID,
		&p.Sku,
		&p.Name,
		&p.Category,
		&p.Price,
		&p.Attributes,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	return p, err
}

// mapError translates store failures into the domain taxonomy. The partial
// unique index on active sku surfaces concurrent duplicate writes as a
// unique violation, which is the single atomic conditional write the
// uniqueness invariant relies on.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		return &apperrors.Error{
			Kind:    apperrors.KindConflict,
			Message: apperrors.ErrSkuConflict.Error(),
			Err:     err,
		}
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.ErrProductGone
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.KindTimeout, err)
	}
	return err
}

const insertProduct = `INSERT INTO products (sku, name, category, price, attributes)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + productColumns

type InsertProductParams struct {
	Sku        string
	Name       string
	Category   string
	Price      pgtype.Numeric
	Attributes map[string]string
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	attributes := arg.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	row := q.db.QueryRow(
		c,
		insertProduct,
		arg.Sku,
		arg.Name,
		arg.Category,
		arg.Price,
		attributes,
	)
	p, err := scanProduct(row)
	return p, mapError(err)
}

const findProductById = `SELECT ` + productColumns + `
FROM products
WHERE id = $1 AND deleted_at IS NULL`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(q.db.QueryRow(c, findProductById, id))
	return p, mapError(err)
}

const findProductBySku = `SELECT ` + productColumns + `
FROM products
WHERE sku = $1 AND deleted_at IS NULL`

func (q *Queries) FindProductBySku(c context.Context, sku string) (Product, error) {
	p, err := scanProduct(q.db.QueryRow(c, findProductBySku, sku))
	return p, mapError(err)
}

const updateProduct = `UPDATE products
SET sku        = COALESCE($2, sku),
    name       = COALESCE($3, name),
    category   = COALESCE($4, category),
    price      = COALESCE($5, price),
    attributes = COALESCE($6, attributes),
    updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + productColumns

type UpdateProductParams struct {
	ID         uuid.UUID
	Sku        pgtype.Text
	Name       pgtype.Text
	Category   pgtype.Text
	Price      pgtype.Numeric
	Attributes []byte
}

func (q *Queries) UpdateProduct(c context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		updateProduct,
		arg.ID,
		arg.Sku,
		arg.Name,
		arg.Category,
		arg.Price,
		arg.Attributes,
	)
	p, err := scanProduct(row)
	return p, mapError(err)
}

const softDeleteProduct = `UPDATE products
SET deleted_at = now(), updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING id`

// SoftDeleteProduct marks the product deleted. A second call finds no active
// row and reports not found, so callers get accurate feedback.
func (q *Queries) SoftDeleteProduct(c context.Context, id uuid.UUID) error {
	var deleted uuid.UUID
	err := q.db.QueryRow(c, softDeleteProduct, id).Scan(&deleted)
	return mapError(err)
}

const listProducts = `SELECT ` + productColumns + `
FROM products
WHERE deleted_at IS NULL
  AND ($1::timestamptz IS NULL OR (created_at, id) > ($1, $2))
ORDER BY created_at, id
LIMIT $3`

type ListProductsParams struct {
	AfterCreatedAt pgtype.Timestamptz
	AfterID        uuid.UUID
	Limit          int32
}

func (q *Queries) ListProducts(c context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(c, listProducts, arg.AfterCreatedAt, arg.AfterID, arg.Limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

const searchProducts = `SELECT ` + productColumns + `
FROM products
WHERE deleted_at IS NULL
  AND ($1::timestamptz IS NULL OR (created_at, id) > ($1, $2))
  AND ($4::text = '' OR name ILIKE '%' || $4 || '%')
  AND ($5::jsonb IS NULL OR attributes @> $5)
  AND ($6::numeric IS NULL OR price >= $6)
  AND ($7::numeric IS NULL OR price <= $7)
ORDER BY created_at, id
LIMIT $3`

type SearchProductsParams struct {
	AfterCreatedAt pgtype.Timestamptz
	AfterID        uuid.UUID
	Limit          int32
	Name           string
	Attributes     []byte
	MinPrice       pgtype.Numeric
	MaxPrice       pgtype.Numeric
}

// escapeLike neutralizes LIKE metacharacters so the name filter matches them
// literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (q *Queries) SearchProducts(c context.Context, arg SearchProductsParams) ([]Product, error) {
	rows, err := q.db.Query(
		c,
		searchProducts,
		arg.AfterCreatedAt,
		arg.AfterID,
		arg.Limit,
		escapeLike(arg.Name),
		arg.Attributes,
		arg.MinPrice,
		arg.MaxPrice,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

const listProductsByCategory = `SELECT ` + productColumns + `
FROM products
WHERE deleted_at IS NULL
  AND category = $4
  AND ($1::timestamptz IS NULL OR (created_at, id) > ($1, $2))
ORDER BY created_at, id
LIMIT $3`

type ListProductsByCategoryParams struct {
	AfterCreatedAt pgtype.Timestamptz
	AfterID        uuid.UUID
	Limit          int32
	Category       string
}

func (q *Queries) ListProductsByCategory(
	c context.Context,
	arg ListProductsByCategoryParams,
) ([]Product, error) {
	rows, err := q.db.Query(
		c,
		listProductsByCategory,
		arg.AfterCreatedAt,
		arg.AfterID,
		arg.Limit,
		arg.Category,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return products, nil
}
