package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestProductBeforeCreateGeneratesID(t *testing.T) {
	product := Product{}
	require.NoError(t, product.BeforeCreate(nil))
	_, err := uuid.Parse(product.ID)
	require.NoError(t, err)

	// A pre-set id is kept.
	product = Product{ID: "fixed"}
	require.NoError(t, product.BeforeCreate(nil))
	require.Equal(t, "fixed", product.ID)
}

func TestVariationBeforeCreateGeneratesID(t *testing.T) {
	variation := ProductVariation{}
	require.NoError(t, variation.BeforeCreate(nil))
	_, err := uuid.Parse(variation.ID)
	require.NoError(t, err)
}

func TestUnmarshalDefaultsActiveFlags(t *testing.T) {
	// Absent keys take the schema default; explicit false survives.
	var product Product
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &product))
	require.True(t, product.IsActive)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","isActive":false}`), &product))
	require.False(t, product.IsActive)

	var variation ProductVariation
	require.NoError(t, json.Unmarshal([]byte(`{"colorName":"Red"}`), &variation))
	require.True(t, variation.IsAvailable)

	require.NoError(t, json.Unmarshal([]byte(`{"colorName":"Red","isAvailable":false}`), &variation))
	require.False(t, variation.IsAvailable)

	// Embedded variation payloads go through the same decoding.
	require.NoError(t, json.Unmarshal(
		[]byte(`{"name":"x","variations":[{"colorName":"Red","isAvailable":false},{"colorName":"Blue"}]}`),
		&product))
	require.False(t, product.Variations[0].IsAvailable)
	require.True(t, product.Variations[1].IsAvailable)
}

func TestProductDataMarshalsNested(t *testing.T) {
	product := Product{
		Name:  "Sneaker",
		Image: "/uploads/s.png",
		Data: ProductData{
			Price:       19.5,
			Description: "desc",
			Category:    "Shoes",
		},
	}

	raw, err := json.Marshal(product)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	data, ok := decoded["data"].(map[string]interface{})
	require.True(t, ok, "data must marshal as a nested object")
	require.Equal(t, 19.5, data["price"])
	require.Equal(t, "Shoes", data["category"])
}
