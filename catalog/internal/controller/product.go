package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/catalog/catalog/internal/otel"
	"github.com/Alturino/catalog/catalog/internal/service"
	"github.com/Alturino/catalog/internal/auth"
	"github.com/Alturino/catalog/internal/constants"
	apperrors "github.com/Alturino/catalog/internal/errors"
	inHttp "github.com/Alturino/catalog/internal/http"
	"github.com/Alturino/catalog/internal/log"
	"github.com/Alturino/catalog/internal/middleware"
	"github.com/Alturino/catalog/pkg/request"
)

type ProductController struct {
	service *service.ProductService
}

// route is one row of the static dispatch table: a (method, path) pair, the
// scope the caller must hold (empty means public), the uuid path parameters
// checked before authorization, and the handler.
type route struct {
	method  string
	path    string
	scope   string
	params  []string
	handler http.HandlerFunc
}

func AttachProductController(
	router *mux.Router,
	svc *service.ProductService,
	validator auth.TokenValidator,
) {
	controller := ProductController{service: svc}

	routes := []route{
		{http.MethodPost, "/produtos", constants.ScopeCatalogWrite, nil, controller.InsertProduct},
		{http.MethodPost, "/produtos/search", constants.ScopeCatalogRead, nil, controller.SearchProducts},
		{http.MethodGet, "/produtos/sku/{sku}", constants.ScopeCatalogRead, nil, controller.FindProductBySku},
		{http.MethodGet, "/produtos/category/{category}", constants.ScopeCatalogRead, nil, controller.FindProductsByCategory},
		{http.MethodGet, "/produtos/{productId}", constants.ScopeCatalogRead, []string{"productId"}, controller.FindProductById},
		{http.MethodPut, "/produtos/{productId}", constants.ScopeCatalogWrite, []string{"productId"}, controller.UpdateProduct},
		{http.MethodDelete, "/produtos/{productId}", constants.ScopeCatalogWrite, []string{"productId"}, controller.RemoveProduct},
		{http.MethodGet, "/produtos", constants.ScopeCatalogRead, nil, controller.GetProducts},
		{http.MethodGet, "/health", "", nil, HealthCheck},
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	for _, r := range routes {
		var handler http.Handler = r.handler
		if r.scope != "" {
			handler = middleware.Auth(validator, r.scope, handler)
		}
		if len(r.params) > 0 {
			handler = middleware.PathUUID(r.params, handler)
		}
		api.Handle(r.path, handler).Methods(r.method)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inHttp.WriteErrorResponse(r.Context(), w, apperrors.ErrRouteNotFound)
	})
	router.MethodNotAllowedHandler = router.NotFoundHandler
}

func (p ProductController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.CreateProduct{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, apperrors.Wrap(apperrors.KindValidation, err))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Info().Msg("inserting product")
	c = logger.WithContext(c)
	product, err := p.service.InsertProduct(c, reqBody)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("inserted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "successfully inserted product",
		"data": map[string]interface{}{
			"product": product,
		},
	})
}

func (p ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindProductById").
		Logger()

	id, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, apperrors.Wrap(apperrors.KindValidation, err))
		return
	}
	logger = logger.With().Str(log.KeyProductID, id.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	span.AddEvent("finding product")
	c = logger.WithContext(c)
	product, err := p.service.FindProductById(c, id)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found product")
	logger.Info().Msg("found product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("product id=%s found", id.String()),
		"data": map[string]interface{}{
			"product": product,
		},
	})
}

func (p ProductController) FindProductBySku(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductBySku")
	defer span.End()

	sku := mux.Vars(r)["sku"]
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindProductBySku").
		Str(log.KeySku, sku).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product by sku").Logger()
	logger.Trace().Msg("finding product by sku")
	span.AddEvent("finding product by sku")
	c = logger.WithContext(c)
	product, err := p.service.FindProductBySku(c, sku)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found product by sku")
	logger.Info().Msg("found product by sku")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("product sku=%s found", sku),
		"data": map[string]interface{}{
			"product": product,
		},
	})
}

func (p ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController GetProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController GetProducts").
		Logger()

	cursorToken, pageSize, err := paginationParams(r)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "get products").Logger()
	logger.Trace().Msg("get products")
	span.AddEvent("get products")
	c = logger.WithContext(c)
	page, err := p.service.GetProducts(c, cursorToken, pageSize)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("got products")
	logger.Info().Msg("got products")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "products found",
		"data":       page,
	})
}

func (p ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController SearchProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController SearchProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.SearchProducts{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, apperrors.Wrap(apperrors.KindValidation, err))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "searching products").Logger()
	logger.Trace().Msg("searching products")
	span.AddEvent("searching products")
	c = logger.WithContext(c)
	page, err := p.service.SearchProducts(c, reqBody)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("searched products")
	logger.Info().Msg("searched products")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "products found",
		"data":       page,
	})
}

func (p ProductController) FindProductsByCategory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductsByCategory")
	defer span.End()

	category := mux.Vars(r)["category"]
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindProductsByCategory").
		Str(log.KeyCategory, category).
		Logger()

	cursorToken, pageSize, err := paginationParams(r)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding products by category").Logger()
	logger.Trace().Msg("finding products by category")
	span.AddEvent("finding products by category")
	c = logger.WithContext(c)
	page, err := p.service.FindProductsByCategory(c, category, cursorToken, pageSize)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found products by category")
	logger.Info().Msg("found products by category")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("products with category=%s found", category),
		"data":       page,
	})
}

func (p ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController UpdateProduct").
		Logger()

	id, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, apperrors.Wrap(apperrors.KindValidation, err))
		return
	}
	logger = logger.With().Str(log.KeyProductID, id.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.UpdateProduct{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, apperrors.Wrap(apperrors.KindValidation, err))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating product").Logger()
	logger.Trace().Msg("updating product")
	span.AddEvent("updating product")
	c = logger.WithContext(c)
	product, err := p.service.UpdateProduct(c, id, reqBody)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("updated product")
	logger.Info().Msg("updated product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated product",
		"data": map[string]interface{}{
			"product": product,
		},
	})
}

func (p ProductController) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController RemoveProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController RemoveProduct").
		Logger()

	id, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, apperrors.Wrap(apperrors.KindValidation, err))
		return
	}
	logger = logger.With().Str(log.KeyProductID, id.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "removing product").Logger()
	logger.Trace().Msg("removing product")
	span.AddEvent("removing product")
	c = logger.WithContext(c)
	if err := p.service.RemoveProduct(c, id); err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("removed product")
	logger.Info().Msg("removed product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully removed product",
		"data": map[string]interface{}{
			"productId": id.String(),
		},
	})
}

func paginationParams(r *http.Request) (cursorToken string, pageSize int, err error) {
	query := r.URL.Query()
	cursorToken = query.Get("cursor")
	if raw := query.Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil {
			err = fmt.Errorf("failed parsing pageSize with error=%w", err)
			return "", 0, apperrors.Wrap(apperrors.KindValidation, err)
		}
	}
	return cursorToken, pageSize, nil
}
