package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/Alturino/catalog/catalog/internal/otel"
	"github.com/Alturino/catalog/catalog/internal/repository"
	apperrors "github.com/Alturino/catalog/internal/errors"
	"github.com/Alturino/catalog/internal/log"
	inOtel "github.com/Alturino/catalog/internal/otel"
	"github.com/Alturino/catalog/pkg/request"
	"github.com/Alturino/catalog/pkg/response"
)

type ProductService struct {
	queries      *repository.Queries
	queryTimeout time.Duration
}

func NewProductService(queries *repository.Queries, queryTimeout time.Duration) ProductService {
	return ProductService{queries: queries, queryTimeout: queryTimeout}
}

// withTimeout bounds every store access so no operation blocks indefinitely;
// an exceeded bound surfaces as the timeout kind instead of hanging.
func (svc ProductService) withTimeout(c context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c, svc.queryTimeout)
}

func (svc ProductService) InsertProduct(
	c context.Context,
	param request.CreateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService InsertProduct").
		Str(log.KeySku, param.Sku).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating product").Logger()
	logger.Trace().Msg("validating product")
	span.AddEvent("validating product")
	if err := validateCreate(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("validated product")
	logger.Trace().Msg("validated product")

	logger = logger.With().Str(log.KeyProcess, "inserting product to database").Logger()
	logger.Trace().Msg("inserting product to database")
	span.AddEvent("inserting product to database")
	c2, cancel := svc.withTimeout(c)
	defer cancel()
	product, err := svc.queries.InsertProduct(c2, repository.InsertProductParams{
		Sku:        param.Sku,
		Name:       param.Name,
		Category:   param.Category,
		Price:      repository.NumericFromDecimal(param.Price),
		Attributes: param.Attributes,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, unwrapOrKeep(err)
	}
	span.AddEvent("inserted product to database")
	logger = logger.With().Str(log.KeyProductID, product.ID.String()).Logger()
	logger.Info().Msg("inserted product to database")

	return product.Response(), nil
}

func (svc ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	c2, cancel := svc.withTimeout(c)
	defer cancel()
	product, err := svc.queries.FindProductById(c2, id)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, unwrapOrKeep(err)
	}
	span.AddEvent("found product in database")
	logger.Info().Msg("found product in database")

	return product.Response(), nil
}

func (svc ProductService) FindProductBySku(
	c context.Context,
	sku string,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductBySku")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProductBySku").
		Str(log.KeySku, sku).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	c2, cancel := svc.withTimeout(c)
	defer cancel()
	product, err := svc.queries.FindProductBySku(c2, sku)
	if err != nil {
		err = fmt.Errorf("failed finding product by sku with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, unwrapOrKeep(err)
	}
	span.AddEvent("found product in database")
	logger.Info().Msg("found product in database")

	return product.Response(), nil
}

func (svc ProductService) UpdateProduct(
	c context.Context,
	id uuid.UUID,
	param request.UpdateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating touched fields").Logger()
	logger.Trace().Msg("validating touched fields")
	span.AddEvent("validating touched fields")
	if err := validateUpdate(param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("validated touched fields")
	logger.Trace().Msg("validated touched fields")

	arg := repository.UpdateProductParams{ID: id}
	if param.Sku != nil {
		arg.Sku = pgtype.Text{String: *param.Sku, Valid: true}
	}
	if param.Name != nil {
		arg.Name = pgtype.Text{String: *param.Name, Valid: true}
	}
	if param.Category != nil {
		arg.Category = pgtype.Text{String: *param.Category, Valid: true}
	}
	if param.Price != nil {
		arg.Price = repository.NumericFromDecimal(*param.Price)
	}
	if param.Attributes != nil {
		attributes, err := json.Marshal(param.Attributes)
		if err != nil {
			err = fmt.Errorf("failed marshaling attributes with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, apperrors.Wrap(apperrors.KindValidation, err)
		}
		arg.Attributes = attributes
	}

	logger = logger.With().Str(log.KeyProcess, "updating product in database").Logger()
	logger.Trace().Msg("updating product in database")
	span.AddEvent("updating product in database")
	c2, cancel := svc.withTimeout(c)
	defer cancel()
	product, err := svc.queries.UpdateProduct(c2, arg)
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, unwrapOrKeep(err)
	}
	span.AddEvent("updated product in database")
	logger.Info().Msg("updated product in database")

	return product.Response(), nil
}

func (svc ProductService) RemoveProduct(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService RemoveProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService RemoveProduct").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing product in database").Logger()
	logger.Trace().Msg("removing product in database")
	span.AddEvent("removing product in database")
	c2, cancel := svc.withTimeout(c)
	defer cancel()
	err := svc.queries.SoftDeleteProduct(c2, id)
	if err != nil {
		err = fmt.Errorf("failed removing product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return unwrapOrKeep(err)
	}
	span.AddEvent("removed product in database")
	logger.Info().Msg("removed product in database")

	return nil
}

func validateCreate(c context.Context, param request.CreateProduct) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		return apperrors.Wrap(apperrors.KindValidation, err)
	}
	if strings.TrimSpace(param.Name) == "" {
		return apperrors.New(apperrors.KindValidation, "name must not be empty")
	}
	if param.Price.IsNegative() {
		return apperrors.New(apperrors.KindValidation, "price must be non-negative")
	}
	return nil
}

func validateUpdate(param request.UpdateProduct) error {
	if param.Sku != nil && strings.TrimSpace(*param.Sku) == "" {
		return apperrors.New(apperrors.KindValidation, "sku must not be empty")
	}
	if param.Name != nil && strings.TrimSpace(*param.Name) == "" {
		return apperrors.New(apperrors.KindValidation, "name must not be empty")
	}
	if param.Price != nil && param.Price.IsNegative() {
		return apperrors.New(apperrors.KindValidation, "price must be non-negative")
	}
	return nil
}

// unwrapOrKeep strips the logging wrap when the cause already carries a
// taxonomy kind, so the dispatcher passes domain errors through unmodified.
func unwrapOrKeep(err error) error {
	var e *apperrors.Error
	if errors.As(err, &e) {
		return e
	}
	return err
}
