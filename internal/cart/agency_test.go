package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newResolver(selection cart.AgencySelection, api *melhorenvio.MockAPIClient) *cart.AgencyResolver {
	return cart.NewAgencyResolver(
		selection,
		api,
		cart.StaticSeller{Address: *fullAddress()},
		otelzap.New(zap.NewNop()),
	)
}

func TestAgencyResolver_CarriersWithoutAgency(t *testing.T) {
	r := newResolver(cart.AgencySelection{Jadlog: 1}, melhorenvio.NewMockAPIClient())

	for _, service := range []int{melhorenvio.ServicePAC, melhorenvio.ServiceSEDEX, melhorenvio.ServiceCorreiosMini, melhorenvio.ServiceViaBrasil} {
		assert.Nil(t, r.Resolve(context.Background(), service), "service %d", service)
	}
}

func TestAgencyResolver_SelectedAgencyWins(t *testing.T) {
	api := melhorenvio.NewMockAPIClient()
	api.OnAgencies = func(ctx context.Context, req *melhorenvio.AgenciesRequest) ([]melhorenvio.Agency, error) {
		t.Fatal("agencies must not be listed when one is selected")
		return nil, nil
	}
	r := newResolver(cart.AgencySelection{Jadlog: 49, AzulCargo: 77, LatamCargo: 88}, api)

	ctx := context.Background()
	assert.Equal(t, int64(49), *r.Resolve(ctx, melhorenvio.ServiceJadlogCom))
	assert.Equal(t, int64(77), *r.Resolve(ctx, melhorenvio.ServiceAzulEcommerce))
	assert.Equal(t, int64(88), *r.Resolve(ctx, melhorenvio.ServiceLatamCargo))
}

func TestAgencyResolver_FallsBackToSellerCity(t *testing.T) {
	api := melhorenvio.NewMockAPIClient()
	var got *melhorenvio.AgenciesRequest
	api.OnAgencies = func(ctx context.Context, req *melhorenvio.AgenciesRequest) ([]melhorenvio.Agency, error) {
		got = req
		return []melhorenvio.Agency{{ID: 501}, {ID: 502}}, nil
	}
	r := newResolver(cart.AgencySelection{}, api)

	id := r.Resolve(context.Background(), melhorenvio.ServiceAzulAmanha)
	require.NotNil(t, id)
	assert.Equal(t, int64(501), *id)
	assert.Equal(t, 9, got.CompanyID)
	assert.Equal(t, "São Paulo", got.City)
	assert.Equal(t, "SP", got.StateAbbr)
}

func TestAgencyResolver_LookupFailures(t *testing.T) {
	api := melhorenvio.NewMockAPIClient()
	api.OnAgencies = func(ctx context.Context, req *melhorenvio.AgenciesRequest) ([]melhorenvio.Agency, error) {
		return nil, errors.New("boom")
	}
	r := newResolver(cart.AgencySelection{}, api)
	assert.Nil(t, r.Resolve(context.Background(), melhorenvio.ServiceJadlogPackage))

	api.OnAgencies = func(ctx context.Context, req *melhorenvio.AgenciesRequest) ([]melhorenvio.Agency, error) {
		return nil, nil
	}
	assert.Nil(t, r.Resolve(context.Background(), melhorenvio.ServiceJadlogPackage))
}

func TestAgencyResolver_NoLister(t *testing.T) {
	r := cart.NewAgencyResolver(cart.AgencySelection{}, nil, nil, otelzap.New(zap.NewNop()))
	assert.Nil(t, r.Resolve(context.Background(), melhorenvio.ServiceJadlogPackage))
}
