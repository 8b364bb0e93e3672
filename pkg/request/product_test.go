package request

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUpdateProductPartialUnmarshal(t *testing.T) {
	payload := []byte(`{"name":"Red Shoe","price":"19.90"}`)

	actual := UpdateProduct{}
	err := json.Unmarshal(payload, &actual)

	assert.NoError(t, err)
	assert.Nil(t, actual.Sku, "absent field should stay nil")
	assert.Nil(t, actual.Category, "absent field should stay nil")
	assert.Nil(t, actual.Attributes, "absent field should stay nil")
	assert.NotNil(t, actual.Name)
	assert.EqualValues(t, "Red Shoe", *actual.Name)
	assert.NotNil(t, actual.Price)
	assert.True(t, decimal.RequireFromString("19.90").Equal(*actual.Price))
}
