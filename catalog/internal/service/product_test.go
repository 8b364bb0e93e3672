package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/Alturino/catalog/internal/errors"
	"github.com/Alturino/catalog/pkg/request"
)

func TestInsertAndFindProductBySku(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	expected := mustCreateProduct(t, c, svc, request.CreateProduct{
		Sku:        "SKU-001",
		Name:       "Red Shoe",
		Category:   "footwear",
		Price:      decimal.RequireFromString("19.90"),
		Attributes: map[string]string{"color": "red", "size": "42"},
	})

	actual, err := svc.FindProductBySku(c, "SKU-001")

	assert.NoError(t, err)
	assert.EqualValues(t, expected.ID, actual.ID)
	assert.EqualValues(t, "SKU-001", actual.Sku)
	assert.EqualValues(t, "Red Shoe", actual.Name)
	assert.EqualValues(t, "footwear", actual.Category)
	assert.True(t, decimal.RequireFromString("19.90").Equal(actual.Price))
	assert.EqualValues(t, map[string]string{"color": "red", "size": "42"}, actual.Attributes)
	assert.False(t, actual.CreatedAt.IsZero())
	assert.False(t, actual.UpdatedAt.IsZero())
}

func TestInsertProductValidation(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	tests := []struct {
		name  string
		param request.CreateProduct
	}{
		{
			name:  "given empty sku should return validation error",
			param: request.CreateProduct{Name: "Red Shoe", Price: decimal.NewFromInt(10)},
		},
		{
			name:  "given empty name should return validation error",
			param: request.CreateProduct{Sku: "SKU-002", Price: decimal.NewFromInt(10)},
		},
		{
			name:  "given whitespace name should return validation error",
			param: request.CreateProduct{Sku: "SKU-003", Name: "   ", Price: decimal.NewFromInt(10)},
		},
		{
			name:  "given negative price should return validation error",
			param: request.CreateProduct{Sku: "SKU-004", Name: "Red Shoe", Price: decimal.NewFromInt(-5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.InsertProduct(c, tt.param)

			assert.Error(t, err)
			assert.EqualValues(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestConcurrentInsertSameSku(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	workers := 5
	errs := make([]error, workers)
	wg := sync.WaitGroup{}
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.InsertProduct(c, request.CreateProduct{
				Sku:   "SKU-RACE",
				Name:  "Red Shoe",
				Price: decimal.NewFromInt(10),
			})
		}()
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.EqualValues(t, apperrors.KindConflict, apperrors.KindOf(err))
		conflicted++
	}
	assert.EqualValues(t, 1, succeeded, "exactly one concurrent insert should win")
	assert.EqualValues(t, workers-1, conflicted, "the rest should observe a conflict")
}

func TestRemoveProduct(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	product := mustCreateProduct(t, c, svc, request.CreateProduct{
		Sku:   "SKU-005",
		Name:  "Boot",
		Price: decimal.NewFromInt(30),
	})

	err := svc.RemoveProduct(c, product.ID)
	assert.NoError(t, err)

	_, err = svc.FindProductById(c, product.ID)
	assert.Error(t, err)
	assert.EqualValues(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = svc.FindProductBySku(c, "SKU-005")
	assert.Error(t, err)
	assert.EqualValues(t, apperrors.KindNotFound, apperrors.KindOf(err))

	err = svc.RemoveProduct(c, product.ID)
	assert.Error(t, err, "removing an already removed product should fail")
	assert.EqualValues(t, apperrors.KindNotFound, apperrors.KindOf(err))

	recreated, err := svc.InsertProduct(c, request.CreateProduct{
		Sku:   "SKU-005",
		Name:  "Boot",
		Price: decimal.NewFromInt(30),
	})
	assert.NoError(t, err, "sku of a removed product should be reusable")
	assert.NotEqualValues(t, product.ID, recreated.ID)
}

func TestRemoveProductUnknownId(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	err := svc.RemoveProduct(c, uuid.New())

	assert.Error(t, err)
	assert.EqualValues(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUpdateProduct(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	product := mustCreateProduct(t, c, svc, request.CreateProduct{
		Sku:        "SKU-006",
		Name:       "Red Shoe",
		Category:   "footwear",
		Price:      decimal.RequireFromString("19.90"),
		Attributes: map[string]string{"color": "red"},
	})

	name := "Crimson Shoe"
	price := decimal.RequireFromString("24.50")
	updated, err := svc.UpdateProduct(c, product.ID, request.UpdateProduct{
		Name:  &name,
		Price: &price,
	})

	assert.NoError(t, err)
	assert.EqualValues(t, "Crimson Shoe", updated.Name)
	assert.True(t, price.Equal(updated.Price))
	assert.EqualValues(t, "SKU-006", updated.Sku, "untouched field should keep its value")
	assert.EqualValues(t, "footwear", updated.Category, "untouched field should keep its value")
	assert.EqualValues(t, map[string]string{"color": "red"}, updated.Attributes)
}

func TestUpdateProductNegativePrice(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	product := mustCreateProduct(t, c, svc, request.CreateProduct{
		Sku:   "SKU-007",
		Name:  "Red Shoe",
		Price: decimal.RequireFromString("19.90"),
	})

	price := decimal.NewFromInt(-5)
	_, err := svc.UpdateProduct(c, product.ID, request.UpdateProduct{Price: &price})
	assert.Error(t, err)
	assert.EqualValues(t, apperrors.KindValidation, apperrors.KindOf(err))

	unchanged, err := svc.FindProductById(c, product.ID)
	assert.NoError(t, err)
	assert.True(
		t,
		decimal.RequireFromString("19.90").Equal(unchanged.Price),
		"rejected update should leave the stored price unchanged",
	)
}

func TestUpdateProductUnknownId(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	name := "Crimson Shoe"
	_, err := svc.UpdateProduct(c, uuid.New(), request.UpdateProduct{Name: &name})

	assert.Error(t, err)
	assert.EqualValues(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUpdateProductSkuConflict(t *testing.T) {
	c := testContext()
	_, _, svc, teardown := setupProductService(t, c)
	defer teardown()

	mustCreateProduct(t, c, svc, request.CreateProduct{
		Sku:   "SKU-008",
		Name:  "Red Shoe",
		Price: decimal.NewFromInt(10),
	})
	other := mustCreateProduct(t, c, svc, request.CreateProduct{
		Sku:   "SKU-009",
		Name:  "Boot",
		Price: decimal.NewFromInt(30),
	})

	sku := "SKU-008"
	_, err := svc.UpdateProduct(c, other.ID, request.UpdateProduct{Sku: &sku})

	assert.Error(t, err)
	assert.EqualValues(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestQueryTimeout(t *testing.T) {
	c := testContext()
	_, queries, _, teardown := setupProductService(t, c)
	defer teardown()

	svc := NewProductService(queries, time.Nanosecond)

	_, err := svc.FindProductById(c, uuid.New())

	assert.Error(t, err)
	assert.EqualValues(t, apperrors.KindTimeout, apperrors.KindOf(err))
}
