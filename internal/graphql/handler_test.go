package graphql_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/melhorenvio/internal/graphql"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func postGraphQL(t *testing.T, h http.Handler, query string, variables map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": variables})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTestHandler() (*graphql.Handler, *graphql.Resolver) {
	resolver, _ := newTestResolver()
	return graphql.NewHandler(resolver, otelzap.New(zap.NewNop())), resolver
}

func TestHandler_Health(t *testing.T) {
	h, _ := newTestHandler()

	rec := postGraphQL(t, h, `{ health }`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data": {"health": "ok"}}`, rec.Body.String())
}

func TestHandler_SelectionAndAliases(t *testing.T) {
	h, _ := newTestHandler()

	rec := postGraphQL(t, h, `query { first: methods { code id __typename } }`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			First []map[string]interface{} `json:"first"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.First, 9)
	assert.Equal(t, map[string]interface{}{"code": float64(1), "id": "pac", "__typename": "Method"}, resp.Data.First[0])

	assert.Contains(t, rec.Body.String(), `{"code":1,"id":"pac","__typename":"Method"}`)
}

func TestHandler_AddToCartWithVariables(t *testing.T) {
	h, _ := newTestHandler()

	rec := postGraphQL(t, h, `
		mutation Add($order: Int!, $buyer: AddressInput, $products: [ProductInput!]) {
			addToCart(order_id: $order, service: 1, products: $products, buyer: $buyer) {
				success
				errors
				quotation { order_id status }
			}
		}`, map[string]interface{}{
		"order": 90,
		"buyer": map[string]interface{}{
			"name": "Maria Silva", "address": "Rua Augusta", "number": "10",
			"city": "São Paulo", "state_abbr": "SP", "postal_code": "01305-000",
		},
		"products": []interface{}{map[string]interface{}{
			"name": "Camiseta", "quantity": 1, "unitary_value": 49.9,
			"weight": 0.3, "width": 11, "height": 2, "length": 16,
		}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"data": {"addToCart": {
		"success": true,
		"errors": [],
		"quotation": {"order_id": 90, "status": "pending"}
	}}}`, rec.Body.String())
}

func TestHandler_ValidateCartLiteral(t *testing.T) {
	h, _ := newTestHandler()

	rec := postGraphQL(t, h, `mutation {
		validateCart(payload: {service: 2, products: []}) { valid errors }
	}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			ValidateCart struct {
				Valid  bool     `json:"valid"`
				Errors []string `json:"errors"`
			} `json:"validateCart"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.ValidateCart.Valid)
	assert.Equal(t, "Informar o remetente o pedido.", resp.Data.ValidateCart.Errors[0])
}

func TestHandler_FieldErrorKeepsOtherFields(t *testing.T) {
	h, _ := newTestHandler()

	rec := postGraphQL(t, h, `mutation {
		removeFromCart(order_id: 404) { success }
		__typename
	}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data   map[string]interface{} `json:"data"`
		Errors []struct {
			Message string        `json:"message"`
			Path    []interface{} `json:"path"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Data["removeFromCart"])
	assert.Equal(t, "Mutation", resp.Data["__typename"])
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "no cart item known")
	assert.Equal(t, []interface{}{"removeFromCart"}, resp.Errors[0].Path)
}

func TestHandler_Rejected(t *testing.T) {
	h, _ := newTestHandler()

	tests := []struct {
		name      string
		query     string
		variables map[string]interface{}
	}{
		{"unknown field", `{ nope }`, nil},
		{"syntax", `{ health `, nil},
		{"missing variable", `mutation ($id: Int!) { removeFromCart(order_id: $id) { success } }`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postGraphQL(t, h, tt.query, tt.variables)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), `"errors"`)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader([]byte(`{`)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
