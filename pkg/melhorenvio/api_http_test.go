package melhorenvio_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

func newHTTPClient(t *testing.T, handler http.HandlerFunc) *melhorenvio.HTTPAPIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return melhorenvio.NewHTTPAPIClient(melhorenvio.HTTPAPIClientConfig{
		BaseURL:   srv.URL,
		Token:     "token-123",
		UserAgent: "loja (dev@loja.com.br)",
	})
}

func TestHTTPAPIClient_AddToCart_Success(t *testing.T) {
	client := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "loja (dev@loja.com.br)", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(melhorenvio.ServicePAC), body["service"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "9a1b", "protocol": "ORD-202310", "self_tracking": "ME123"}`))
	})

	resp, err := client.AddToCart(context.Background(), &melhorenvio.CartPayload{Service: melhorenvio.ServicePAC})
	require.NoError(t, err)

	result := resp.Classify()
	assert.Equal(t, melhorenvio.CartResultSuccess, result.Kind)
	assert.Equal(t, "9a1b", result.ID)
	assert.Equal(t, "ORD-202310", result.Protocol)
	assert.Equal(t, "ME123", result.SelfTracking)
}

func TestHTTPAPIClient_AddToCart_ValidationErrorsAreData(t *testing.T) {
	client := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "The given data was invalid.", "errors": {"to.phone": ["O campo to.phone é obrigatório."]}}`))
	})

	resp, err := client.AddToCart(context.Background(), &melhorenvio.CartPayload{})
	require.NoError(t, err)

	result := resp.Classify()
	assert.Equal(t, melhorenvio.CartResultError, result.Kind)
	assert.Equal(t, "O campo to.phone é obrigatório.", result.LastMessage())
}

func TestHTTPAPIClient_AddToCart_ServerError(t *testing.T) {
	client := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message": "upstream"}`))
	})

	_, err := client.AddToCart(context.Background(), &melhorenvio.CartPayload{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, melhorenvio.ErrServiceUnavailable))
	assert.True(t, melhorenvio.IsRetryable(err))
}

func TestHTTPAPIClient_RemoveFromCart(t *testing.T) {
	client := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/cart/9a1b", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.RemoveFromCart(context.Background(), "9a1b"))
}

func TestHTTPAPIClient_OrderInfo_NotFound(t *testing.T) {
	client := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/9a1b", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "No query results"}`))
	})

	_, err := client.OrderInfo(context.Background(), "9a1b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, melhorenvio.ErrOrderNotFound))
}

func TestHTTPAPIClient_OrderInfo_Found(t *testing.T) {
	client := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "9a1b", "protocol": "ORD-1", "status": "pending"}`))
	})

	info, err := client.OrderInfo(context.Background(), "9a1b")
	require.NoError(t, err)
	assert.Equal(t, "pending", info.Status)
}

func TestHTTPAPIClient_Calculate(t *testing.T) {
	client := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/shipment/calculate", r.URL.Path)

		var req melhorenvio.CalculateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "01310100", req.To.PostalCode)

		w.Write([]byte(`[
			{"id": 1, "name": "PAC", "price": "18.52", "delivery_time": 6,
			 "company": {"id": 1, "name": "Correios"},
			 "packages": [{"weight": 0.3, "dimensions": {"height": 2, "width": 11, "length": 16}}]},
			{"id": 3, "name": ".Package", "error": "Serviço indisponível para o trecho."}
		]`))
	})

	results, err := client.Calculate(context.Background(), &melhorenvio.CalculateRequest{
		To: melhorenvio.PostalCodeRef{PostalCode: "01310100"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 18.52, results[0].Price)
	assert.Equal(t, 0.3, results[0].Packages[0].Weight)
	assert.Equal(t, "Serviço indisponível para o trecho.", results[1].Error)
}

func TestHTTPAPIClient_Agencies(t *testing.T) {
	client := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shipment/agencies", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("company"))
		assert.Equal(t, "SP", r.URL.Query().Get("state"))
		assert.Equal(t, "São Paulo", r.URL.Query().Get("city"))
		w.Write([]byte(`[{"id": 49, "name": "JAD SP 01"}]`))
	})

	agencies, err := client.Agencies(context.Background(), &melhorenvio.AgenciesRequest{
		CompanyID: 2,
		StateAbbr: "SP",
		City:      "São Paulo",
	})
	require.NoError(t, err)
	require.Len(t, agencies, 1)
	assert.Equal(t, int64(49), agencies[0].ID)
}
