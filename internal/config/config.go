// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Environments accepted by ENVIRONMENT.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"80"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"sandbox"`
	APIKeyHash  string `envconfig:"API_KEY_HASH"`

	// Melhor Envio
	MelhorEnvioBaseURL   string `envconfig:"MELHORENVIO_BASE_URL"`
	MelhorEnvioToken     string `envconfig:"MELHORENVIO_TOKEN"`
	MelhorEnvioUseMock   bool   `envconfig:"MELHORENVIO_USE_MOCK" default:"false"`
	MelhorEnvioUserAgent string `envconfig:"MELHORENVIO_USER_AGENT"`

	// Storage
	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Seller (sender address)
	SellerName            string `envconfig:"SELLER_NAME"`
	SellerPhone           string `envconfig:"SELLER_PHONE"`
	SellerEmail           string `envconfig:"SELLER_EMAIL"`
	SellerDocument        string `envconfig:"SELLER_DOCUMENT"`
	SellerCompanyDocument string `envconfig:"SELLER_COMPANY_DOCUMENT"`
	SellerStateRegister   string `envconfig:"SELLER_STATE_REGISTER"`
	SellerAddress         string `envconfig:"SELLER_ADDRESS"`
	SellerComplement      string `envconfig:"SELLER_COMPLEMENT"`
	SellerNumber          string `envconfig:"SELLER_NUMBER"`
	SellerDistrict        string `envconfig:"SELLER_DISTRICT"`
	SellerCity            string `envconfig:"SELLER_CITY"`
	SellerStateAbbr       string `envconfig:"SELLER_STATE_ABBR"`
	SellerPostalCode      string `envconfig:"SELLER_POSTAL_CODE"`

	// Optional services
	OptionReceipt        bool `envconfig:"OPTION_RECEIPT" default:"false"`
	OptionOwnHand        bool `envconfig:"OPTION_OWN_HAND" default:"false"`
	OptionInsuranceValue bool `envconfig:"OPTION_INSURANCE_VALUE" default:"true"`

	// Agencies selected per carrier
	AgencyJadlog int64 `envconfig:"AGENCY_JADLOG"`
	AgencyAzul   int64 `envconfig:"AGENCY_AZUL"`
	AgencyLatam  int64 `envconfig:"AGENCY_LATAM"`

	// Checkout rates
	EnabledMethods       string `envconfig:"ENABLED_METHODS"`
	RateShowDeliveryTime bool   `envconfig:"RATE_SHOW_DELIVERY_TIME" default:"true"`
	RateExtraDays        int    `envconfig:"RATE_EXTRA_DAYS" default:"0"`
	RateHandlingFee      string `envconfig:"RATE_HANDLING_FEE"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"melhorenvio-cart"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvSandbox, EnvProduction:
	default:
		return fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", EnvSandbox, EnvProduction, c.Environment)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required with STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := c.MethodCodes(); err != nil {
		return err
	}
	return nil
}

// BaseURL returns the Melhor Envio API root for the environment unless
// MELHORENVIO_BASE_URL overrides it.
func (c *Config) BaseURL() string {
	if c.MelhorEnvioBaseURL != "" {
		return c.MelhorEnvioBaseURL
	}
	if c.Environment == EnvProduction {
		return "https://melhorenvio.com.br/api/v2"
	}
	return "https://sandbox.melhorenvio.com.br/api/v2"
}

// MethodCodes parses ENABLED_METHODS ("1,2,17"). Empty means every method.
func (c *Config) MethodCodes() ([]int, error) {
	if strings.TrimSpace(c.EnabledMethods) == "" {
		return nil, nil
	}
	var codes []int
	for _, part := range strings.Split(c.EnabledMethods, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid ENABLED_METHODS entry %q: %w", part, err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("deployment.environment", c.Environment),
		attribute.String("store.driver", c.StoreDriver),
		attribute.Bool("melhorenvio.mock", c.MelhorEnvioUseMock),
	}
}
