package graphql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

func ptr[T any](v T) *T { return &v }

func TestAddressInputToModel(t *testing.T) {
	input := &AddressInput{
		Name:       ptr("Maria Silva"),
		Phone:      ptr("11999990000"),
		Email:      ptr("maria@example.com"),
		Document:   ptr("12345678909"),
		Address:    ptr("Av. Paulista"),
		Number:     ptr("1000"),
		City:       ptr("São Paulo"),
		StateAbbr:  ptr("SP"),
		PostalCode: ptr("01310-100"),
	}

	result := addressInputToModel(input)

	require.NotNil(t, result)
	assert.Equal(t, "Maria Silva", result.Name)
	assert.Equal(t, "11999990000", result.Phone)
	assert.Equal(t, "Av. Paulista", result.Address)
	assert.Equal(t, "SP", result.StateAbbr)
	assert.Equal(t, "01310-100", result.PostalCode)
	assert.Empty(t, result.Complement)
	assert.Empty(t, result.CompanyDocument)
}

func TestAddressInputToModel_Nil(t *testing.T) {
	assert.Nil(t, addressInputToModel(nil))
}

func TestProductsInputToModel(t *testing.T) {
	products := productsInputToModel([]*ProductInput{
		{Name: ptr("Caneca"), Quantity: ptr(2), UnitaryValue: ptr(19.9), Weight: ptr(0.4)},
		nil,
		{Name: ptr("Ebook"), IsVirtual: ptr(true)},
	})

	require.Len(t, products, 2)
	assert.Equal(t, melhorenvio.Product{Name: "Caneca", Quantity: 2, UnitaryValue: 19.9, Weight: 0.4}, products[0])
	assert.True(t, products[1].IsVirtual)
	assert.Nil(t, productsInputToModel(nil))
}

func TestPayloadInputToModel(t *testing.T) {
	payload := payloadInputToModel(CartPayloadInput{
		Service: ptr(3),
		Agency:  ptr(int64(49)),
		Volumes: []*VolumeInput{{Height: ptr(2.0), Width: ptr(11.0), Length: ptr(16.0), Weight: ptr(0.3)}},
		Options: &OptionsInput{Receipt: ptr(true), Invoice: &InvoiceInput{Key: "NFE"}},
	})

	assert.Equal(t, 3, payload.Service)
	require.NotNil(t, payload.Agency)
	assert.Equal(t, int64(49), *payload.Agency)
	assert.Equal(t, 1, payload.Volumes.Len())
	assert.False(t, payload.Volumes.IsSingle())
	require.NotNil(t, payload.Options)
	assert.True(t, payload.Options.Receipt)
	assert.False(t, payload.Options.OwnHand)
	assert.Equal(t, "NFE", payload.Options.Invoice.Key)
	assert.Nil(t, payload.From)
}

func TestCartContextInputToModel(t *testing.T) {
	cc := cartContextInputToModel(CartContextInput{
		Items: []*CartItemInput{{ProductID: "42", Name: ptr("Camiseta"), Price: ptr(49.9)}},
		Additional: []*CartFeeInput{
			{Method: "pac", ProductID: "42", Amount: 2.5},
			{Method: "sedex", ProductID: "42", Amount: 4},
		},
	})

	assert.Equal(t, []cart.CartItem{{ProductID: "42", Name: "Camiseta", Price: 49.9}}, cc.Items)
	assert.Equal(t, map[string]map[string]float64{
		"pac":   {"42": 2.5},
		"sedex": {"42": 4},
	}, cc.Additional)
}

func TestAddResultToGraphQL(t *testing.T) {
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		result  *cart.AddResult
		want    []string
		success bool
	}{
		{"validation", &cart.AddResult{ValidationErrors: []string{"A", "B"}}, []string{"A", "B"}, false},
		{"remote", &cart.AddResult{RemoteError: "B"}, []string{"B"}, false},
		{"success", &cart.AddResult{Success: true, Quotation: &melhorenvio.OrderQuotation{
			OrderID: 7, CartItemID: "9a1b", Status: melhorenvio.StatusPending, ShippingMethodID: 1, UpdatedAt: updated,
		}}, []string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := addResultToGraphQL(tt.result)
			assert.Equal(t, tt.success, out.Success)
			assert.Equal(t, tt.want, out.Errors)
		})
	}

	out := addResultToGraphQL(tests[2].result)
	require.NotNil(t, out.Quotation)
	assert.Equal(t, "9a1b", out.Quotation.CartItemID)
	assert.Equal(t, "pending", out.Quotation.Status)
	assert.Equal(t, "2024-03-01T12:00:00Z", out.Quotation.UpdatedAt)
}

func TestCartInfoToGraphQL_Sorted(t *testing.T) {
	out := cartInfoToGraphQL(cart.CartInfo{Products: map[string]cart.ProductInfo{
		"b": {Name: "B", Extras: map[string]float64{"sedex": 2, "pac": 1}},
		"a": {Name: "A"},
	}})

	require.Len(t, out.Products, 2)
	assert.Equal(t, "a", out.Products[0].ProductID)
	assert.Empty(t, out.Products[0].Extras)
	assert.Equal(t, []*ProductExtra{{Method: "pac", Amount: 1}, {Method: "sedex", Amount: 2}}, out.Products[1].Extras)
}
