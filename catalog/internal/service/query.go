package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/Alturino/catalog/catalog/internal/cursor"
	"github.com/Alturino/catalog/catalog/internal/otel"
	"github.com/Alturino/catalog/catalog/internal/repository"
	apperrors "github.com/Alturino/catalog/internal/errors"
	"github.com/Alturino/catalog/internal/log"
	inOtel "github.com/Alturino/catalog/internal/otel"
	"github.com/Alturino/catalog/pkg/request"
	"github.com/Alturino/catalog/pkg/response"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// clampPageSize bounds every response page so a caller cannot request an
// unbounded result set.
func clampPageSize(pageSize int) int32 {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return MaxPageSize
	}
	return int32(pageSize)
}

func decodeCursor(token string) (pgtype.Timestamptz, uuid.UUID, error) {
	if token == "" {
		return pgtype.Timestamptz{}, uuid.Nil, nil
	}
	cur, err := cursor.Decode(token)
	if err != nil {
		return pgtype.Timestamptz{}, uuid.Nil, err
	}
	return pgtype.Timestamptz{Time: cur.CreatedAt, Valid: true}, cur.ID, nil
}

// paginate keeps one page of the limit+1 fetch and derives the next cursor
// from the last kept row. The final page carries no cursor.
func paginate(products []repository.Product, limit int32) response.ProductPage {
	page := response.ProductPage{Products: []response.Product{}}
	hasMore := len(products) > int(limit)
	if hasMore {
		products = products[:limit]
	}
	for _, p := range products {
		page.Products = append(page.Products, p.Response())
	}
	if hasMore {
		last := products[len(products)-1]
		next := cursor.Encode(cursor.Cursor{CreatedAt: last.CreatedAt.Time, ID: last.ID})
		page.NextCursor = &next
	}
	return page
}

func (svc ProductService) GetProducts(
	c context.Context,
	cursorToken string,
	pageSize int,
) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "ProductService GetProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService GetProducts").
		Str(log.KeyCursor, cursorToken).
		Int(log.KeyPageSize, pageSize).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding cursor").Logger()
	logger.Trace().Msg("decoding cursor")
	afterCreatedAt, afterID, err := decodeCursor(cursorToken)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Trace().Msg("decoded cursor")

	limit := clampPageSize(pageSize)
	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	span.AddEvent("finding products in database")
	c2, cancel := svc.withTimeout(c)
	defer cancel()
	products, err := svc.queries.ListProducts(c2, repository.ListProductsParams{
		AfterCreatedAt: afterCreatedAt,
		AfterID:        afterID,
		Limit:          limit + 1,
	})
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, unwrapOrKeep(err)
	}
	span.AddEvent("found products in database")
	logger.Info().Msg("found products in database")

	return paginate(products, limit), nil
}

func (svc ProductService) SearchProducts(
	c context.Context,
	param request.SearchProducts,
) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "ProductService SearchProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService SearchProducts").
		Str(log.KeyCursor, param.Cursor).
		Int(log.KeyPageSize, param.PageSize).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating search query").Logger()
	logger.Trace().Msg("validating search query")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating search query with error=%w", err)
		wrapped := apperrors.Wrap(apperrors.KindValidation, err)
		inOtel.RecordError(wrapped, span)
		logger.Error().Err(wrapped).Msg(wrapped.Error())
		return response.ProductPage{}, wrapped
	}
	if param.MinPrice != nil && param.MaxPrice != nil && param.MinPrice.GreaterThan(*param.MaxPrice) {
		err := apperrors.New(apperrors.KindValidation, "minPrice must not exceed maxPrice")
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Trace().Msg("validated search query")

	logger = logger.With().Str(log.KeyProcess, "decoding cursor").Logger()
	logger.Trace().Msg("decoding cursor")
	afterCreatedAt, afterID, err := decodeCursor(param.Cursor)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Trace().Msg("decoded cursor")

	arg := repository.SearchProductsParams{
		AfterCreatedAt: afterCreatedAt,
		AfterID:        afterID,
		Limit:          clampPageSize(param.PageSize) + 1,
		Name:           param.Name,
	}
	if len(param.Attributes) > 0 {
		attributes, err := json.Marshal(param.Attributes)
		if err != nil {
			err = fmt.Errorf("failed marshaling attributes filter with error=%w", err)
			wrapped := apperrors.Wrap(apperrors.KindValidation, err)
			inOtel.RecordError(wrapped, span)
			logger.Error().Err(wrapped).Msg(wrapped.Error())
			return response.ProductPage{}, wrapped
		}
		arg.Attributes = attributes
	}
	if param.MinPrice != nil {
		arg.MinPrice = repository.NumericFromDecimal(*param.MinPrice)
	}
	if param.MaxPrice != nil {
		arg.MaxPrice = repository.NumericFromDecimal(*param.MaxPrice)
	}

	logger = logger.With().Str(log.KeyProcess, "searching products in database").Logger()
	logger.Trace().Msg("searching products in database")
	span.AddEvent("searching products in database")
	c2, cancel := svc.withTimeout(c)
	defer cancel()
	products, err := svc.queries.SearchProducts(c2, arg)
	if err != nil {
		err = fmt.Errorf("failed searching products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, unwrapOrKeep(err)
	}
	span.AddEvent("searched products in database")
	logger.Info().Msg("searched products in database")

	return paginate(products, clampPageSize(param.PageSize)), nil
}

func (svc ProductService) FindProductsByCategory(
	c context.Context,
	category string,
	cursorToken string,
	pageSize int,
) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductsByCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProductsByCategory").
		Str(log.KeyCategory, category).
		Str(log.KeyCursor, cursorToken).
		Int(log.KeyPageSize, pageSize).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding cursor").Logger()
	logger.Trace().Msg("decoding cursor")
	afterCreatedAt, afterID, err := decodeCursor(cursorToken)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Trace().Msg("decoded cursor")

	limit := clampPageSize(pageSize)
	logger = logger.With().Str(log.KeyProcess, "finding products by category").Logger()
	logger.Trace().Msg("finding products by category")
	span.AddEvent("finding products by category")
	c2, cancel := svc.withTimeout(c)
	defer cancel()
	products, err := svc.queries.ListProductsByCategory(c2, repository.ListProductsByCategoryParams{
		AfterCreatedAt: afterCreatedAt,
		AfterID:        afterID,
		Limit:          limit + 1,
		Category:       category,
	})
	if err != nil {
		err = fmt.Errorf("failed finding products by category with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, unwrapOrKeep(err)
	}
	span.AddEvent("found products by category")
	logger.Info().Msg("found products by category")

	return paginate(products, limit), nil
}
