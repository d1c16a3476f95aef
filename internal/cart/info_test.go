package cart_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/melhorenvio/internal/cart"
)

func TestInfo(t *testing.T) {
	info := cart.Info(cart.CartContext{
		Items: []cart.CartItem{
			{ProductID: "42", Name: "Camiseta", Price: 49.9},
			{ProductID: "43", Name: "Caneca", Price: 25},
			{Name: "sem id"},
		},
		Additional: map[string]map[string]float64{
			"pac":   {"42": 2.5},
			"sedex": {"42": 4, "43": 1},
		},
	})

	require.Len(t, info.Products, 2)
	assert.Equal(t, "Camiseta", info.Products["42"].Name)
	assert.Equal(t, map[string]float64{"pac": 2.5, "sedex": 4}, info.Products["42"].Extras)
	assert.Equal(t, map[string]float64{"sedex": 1}, info.Products["43"].Extras)
	assert.Len(t, info.Additional, 2)
}

func TestInfo_EmptyCart(t *testing.T) {
	info := cart.Info(cart.CartContext{})

	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
