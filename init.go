package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/internal/config"
	"github.com/tournevent/melhorenvio/internal/methods"
	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/internal/store/memory"
	"github.com/tournevent/melhorenvio/internal/store/postgres"
	"github.com/tournevent/melhorenvio/internal/telemetry"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// cartStore is implemented by every storage driver.
type cartStore interface {
	cart.PayloadStore
	cart.QuotationStore
	cart.InvoiceProvider
	SavePayload(ctx context.Context, payload *melhorenvio.SavedPayload) error
	DeletePayload(ctx context.Context, orderID int64) error
	SaveInvoice(ctx context.Context, inv *store.Invoice) error
}

var (
	_ cartStore = (*memory.Store)(nil)
	_ cartStore = (*postgres.Store)(nil)
)

type cartApp struct {
	service *cart.Service
	quotes  cart.QuotationProvider
	seller  cart.SellerProvider
}

var tracer trace.Tracer

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel,
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	t, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
	if err != nil {
		return nil, err
	}
	tracer = t
	return shutdown, nil
}

func initStore(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (cartStore, func(), error) {
	if cfg.StoreDriver != config.StorePostgres {
		return memory.New(), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	st := postgres.New(db, logger)
	if err := st.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return st, func() { db.Close() }, nil
}

func initAPIClient(cfg *config.Config) melhorenvio.APIClient {
	if cfg.MelhorEnvioUseMock {
		return melhorenvio.NewMockAPIClient()
	}
	return melhorenvio.NewHTTPAPIClient(melhorenvio.HTTPAPIClientConfig{
		BaseURL:   cfg.BaseURL(),
		Token:     cfg.MelhorEnvioToken,
		UserAgent: cfg.MelhorEnvioUserAgent,
	})
}

func initCatalog(cfg *config.Config) (*methods.Catalog, error) {
	catalog := methods.NewCatalog(methods.DefaultMethods()...)
	codes, err := cfg.MethodCodes()
	if err != nil {
		return nil, err
	}
	catalog.Restrict(codes)
	return catalog, nil
}

func initRateSettings(cfg *config.Config) (methods.RateSettings, error) {
	fee, err := methods.ParseHandlingFee(cfg.RateHandlingFee)
	if err != nil {
		return methods.RateSettings{}, fmt.Errorf("invalid RATE_HANDLING_FEE: %w", err)
	}
	return methods.RateSettings{
		ShowDeliveryTime: cfg.RateShowDeliveryTime,
		ExtraDays:        cfg.RateExtraDays,
		HandlingFee:      fee,
	}, nil
}

func initCart(cfg *config.Config, st cartStore, client melhorenvio.APIClient, catalog *methods.Catalog, logger *otelzap.Logger) *cartApp {
	seller := cart.StaticSeller{Address: melhorenvio.Address{
		Name:            cfg.SellerName,
		Phone:           cfg.SellerPhone,
		Email:           cfg.SellerEmail,
		Document:        cfg.SellerDocument,
		CompanyDocument: cfg.SellerCompanyDocument,
		StateRegister:   cfg.SellerStateRegister,
		Address:         cfg.SellerAddress,
		Complement:      cfg.SellerComplement,
		Number:          cfg.SellerNumber,
		District:        cfg.SellerDistrict,
		City:            cfg.SellerCity,
		StateAbbr:       cfg.SellerStateAbbr,
		CountryID:       "BR",
		PostalCode:      melhorenvio.NormalizePostalCode(cfg.SellerPostalCode),
	}}

	quotes := cart.NewAPIQuotationProvider(client, catalog.CodesString())

	agencies := cart.NewAgencyResolver(cart.AgencySelection{
		Jadlog:     cfg.AgencyJadlog,
		AzulCargo:  cfg.AgencyAzul,
		LatamCargo: cfg.AgencyLatam,
	}, client, seller, logger)

	builder := cart.NewBuilder(cart.BuilderDeps{
		Payloads: st,
		Invoices: st,
		Seller:   seller,
		Quotes:   quotes,
		Options: cart.StaticOptions{Values: melhorenvio.Settings{
			InsuranceValue: cfg.OptionInsuranceValue,
			Receipt:        cfg.OptionReceipt,
			OwnHand:        cfg.OptionOwnHand,
		}},
		Agencies: agencies,
	})

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	return &cartApp{
		service: cart.NewService(builder, client, st, metrics, logger, tracer),
		quotes:  quotes,
		seller:  seller,
	}
}
