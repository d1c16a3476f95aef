package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/internal/store/memory"
	"github.com/tournevent/melhorenvio/internal/telemetry"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type serviceFixture struct {
	service *cart.Service
	api     *melhorenvio.MockAPIClient
	store   *memory.Store
	metrics *telemetry.Metrics
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	st := memory.New()
	api := melhorenvio.NewMockAPIClient()
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	builder := newTestBuilder(st, quotedPackages(onePackage(), melhorenvio.ServicePAC, melhorenvio.ServiceJadlogPackage), melhorenvio.Settings{})

	return &serviceFixture{
		service: cart.NewService(builder, api, st, metrics, otelzap.New(zap.NewNop()), nil),
		api:     api,
		store:   st,
		metrics: metrics,
	}
}

func (f *serviceFixture) add(t *testing.T, orderID int64, service int) *cart.AddResult {
	t.Helper()
	result, err := f.service.Add(context.Background(), orderID, []melhorenvio.Product{validProduct("Caneca")}, fullAddress(), service)
	require.NoError(t, err)
	return result
}

func cartResponse(t *testing.T, body string) *melhorenvio.CartResponse {
	t.Helper()
	var resp melhorenvio.CartResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return &resp
}

func TestService_Add_Success(t *testing.T) {
	f := newServiceFixture(t)
	f.api.OnAddToCart = func(ctx context.Context, payload *melhorenvio.CartPayload) (*melhorenvio.CartResponse, error) {
		return cartResponse(t, `{"id": 123, "protocol": "X", "self_tracking": "Y"}`), nil
	}

	result := f.add(t, 100, melhorenvio.ServicePAC)

	require.True(t, result.Success)
	require.NotNil(t, result.Quotation)
	assert.Equal(t, "123", result.Quotation.CartItemID)
	assert.Equal(t, "X", result.Quotation.Protocol)
	assert.Equal(t, "Y", result.Quotation.SelfTracking)
	assert.Equal(t, melhorenvio.StatusPending, result.Quotation.Status)
	assert.Equal(t, melhorenvio.ServicePAC, result.Quotation.ShippingMethodID)

	stored, err := f.store.Quotation(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "123", stored.CartItemID)
	assert.Equal(t, melhorenvio.StatusPending, stored.Status)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "123", body["order_id_melhorenvio"])
	assert.Equal(t, "pending", body["status"])

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues("add", "correios", "success")))
}

func TestService_Add_RemoteErrorsSurfaceLast(t *testing.T) {
	f := newServiceFixture(t)
	f.api.OnAddToCart = func(ctx context.Context, payload *melhorenvio.CartPayload) (*melhorenvio.CartResponse, error) {
		return cartResponse(t, `{"errors": ["A", "B"]}`), nil
	}

	result := f.add(t, 101, melhorenvio.ServicePAC)

	assert.False(t, result.Success)
	assert.Equal(t, "B", result.RemoteError)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "errors": "B"}`, string(data))

	_, err = f.store.Quotation(context.Background(), 101)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestService_Add_MissingID(t *testing.T) {
	f := newServiceFixture(t)
	f.api.OnAddToCart = func(ctx context.Context, payload *melhorenvio.CartPayload) (*melhorenvio.CartResponse, error) {
		return cartResponse(t, `{"protocol": "X"}`), nil
	}

	result := f.add(t, 102, melhorenvio.ServicePAC)

	assert.False(t, result.Success)
	assert.Equal(t, cart.MsgCartUnavailable, result.RemoteError)
}

func TestService_Add_ValidationErrorsSkipRemoteCall(t *testing.T) {
	f := newServiceFixture(t)
	buyer := fullAddress()
	buyer.Phone = ""
	buyer.Email = ""

	result, err := f.service.Add(context.Background(), 103, []melhorenvio.Product{validProduct("Caneca")}, buyer, melhorenvio.ServiceJadlogPackage)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, []string{
		"Informar o telefone do destinatario do pedido.",
		"Informar o e-mail do destinatario do pedido.",
	}, result.ValidationErrors)
	assert.Empty(t, f.api.Payloads)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "errors": [
		"Informar o telefone do destinatario do pedido.",
		"Informar o e-mail do destinatario do pedido."
	]}`, string(data))

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.ValidationErrors.WithLabelValues("jadlog")))
}

func TestService_Add_PostedPayload(t *testing.T) {
	f := newServiceFixture(t)

	result := f.add(t, 104, melhorenvio.ServicePAC)
	require.True(t, result.Success)

	require.Len(t, f.api.Payloads, 1)
	posted := f.api.Payloads[0]
	assert.Equal(t, melhorenvio.ServicePAC, posted.Service)
	assert.True(t, posted.Volumes.IsSingle())
	assert.Equal(t, melhorenvio.Platform, posted.Options.Platform)
}

func TestService_Add_TransportError(t *testing.T) {
	f := newServiceFixture(t)
	f.api.SimulateErrors = true

	_, err := f.service.Add(context.Background(), 105, []melhorenvio.Product{validProduct("Caneca")}, fullAddress(), melhorenvio.ServicePAC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, melhorenvio.ErrServiceUnavailable))
}

func TestService_Remove_Success(t *testing.T) {
	f := newServiceFixture(t)
	added := f.add(t, 200, melhorenvio.ServicePAC)
	require.True(t, added.Success)

	removed, err := f.service.Remove(context.Background(), 200, "")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{added.Quotation.CartItemID}, f.api.Removed)

	_, err = f.store.Quotation(context.Background(), 200)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestService_Remove_DeleteFailureIsNotFatal(t *testing.T) {
	f := newServiceFixture(t)
	f.api.OnRemoveFromCart = func(ctx context.Context, cartItemID string) error {
		return errors.New("network down")
	}
	f.api.OnOrderInfo = func(ctx context.Context, cartItemID string) (*melhorenvio.OrderInfo, error) {
		return nil, melhorenvio.NewAPIError("HTTP_404", "not found").WithCause(melhorenvio.ErrOrderNotFound)
	}

	removed, err := f.service.Remove(context.Background(), 201, "9a1b")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestService_Remove_StillInCart(t *testing.T) {
	f := newServiceFixture(t)
	f.api.OnRemoveFromCart = func(ctx context.Context, cartItemID string) error {
		return errors.New("network down")
	}
	f.api.OnOrderInfo = func(ctx context.Context, cartItemID string) (*melhorenvio.OrderInfo, error) {
		return &melhorenvio.OrderInfo{ID: cartItemID, Status: "pending"}, nil
	}

	removed, err := f.service.Remove(context.Background(), 202, "9a1b")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestService_Remove_OrderInfoError(t *testing.T) {
	f := newServiceFixture(t)
	f.api.OnOrderInfo = func(ctx context.Context, cartItemID string) (*melhorenvio.OrderInfo, error) {
		return nil, melhorenvio.NewAPIError("HTTP_503", "down").WithCause(melhorenvio.ErrServiceUnavailable)
	}

	removed, err := f.service.Remove(context.Background(), 203, "9a1b")
	require.Error(t, err)
	assert.False(t, removed)
	assert.True(t, errors.Is(err, melhorenvio.ErrServiceUnavailable))
}

func TestService_Remove_UnknownCartItem(t *testing.T) {
	f := newServiceFixture(t)

	removed, err := f.service.Remove(context.Background(), 204, "")
	require.Error(t, err)
	assert.False(t, removed)
	assert.True(t, errors.Is(err, cart.ErrUnknownCartItem))
	assert.Empty(t, f.api.Removed)
}

func TestService_Add_PostsNormalizedPostalCodes(t *testing.T) {
	f := newServiceFixture(t)

	result := f.add(t, 77, melhorenvio.ServicePAC)

	require.True(t, result.Success)
	require.Len(t, f.api.Payloads, 1)
	assert.Equal(t, "01310100", f.api.Payloads[0].To.PostalCode)
	assert.Equal(t, "01310100", f.api.Payloads[0].From.PostalCode)
}
