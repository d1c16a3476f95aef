package cart

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

// StaticSeller serves a fixed sender address, usually loaded from config.
type StaticSeller struct {
	Address melhorenvio.Address
}

// Seller returns a copy of the configured address.
func (s StaticSeller) Seller(ctx context.Context) (*melhorenvio.Address, error) {
	addr := s.Address
	return &addr, nil
}

// StaticOptions serves fixed merchant settings.
type StaticOptions struct {
	Values melhorenvio.Settings
}

// Settings returns a copy of the configured settings.
func (o StaticOptions) Settings(ctx context.Context) (*melhorenvio.Settings, error) {
	s := o.Values
	return &s, nil
}

// APIQuotationProvider quotes through the Melhor Envio calculate endpoint.
type APIQuotationProvider struct {
	client   melhorenvio.APIClient
	services string
}

// NewAPIQuotationProvider creates a provider quoting the comma separated
// service codes. An empty list quotes every service.
func NewAPIQuotationProvider(client melhorenvio.APIClient, services string) *APIQuotationProvider {
	return &APIQuotationProvider{
		client:   client,
		services: services,
	}
}

// Quote implements QuotationProvider.
func (p *APIQuotationProvider) Quote(ctx context.Context, req QuoteRequest) ([]melhorenvio.QuotationResult, error) {
	calc := &melhorenvio.CalculateRequest{
		Products: req.Products,
		Services: p.services,
	}
	if req.From != nil {
		calc.From.PostalCode = melhorenvio.NormalizePostalCode(req.From.PostalCode)
	}
	if req.To != nil {
		calc.To.PostalCode = melhorenvio.NormalizePostalCode(req.To.PostalCode)
	}
	return p.client.Calculate(ctx, calc)
}

// DeclaredValue computes the insurance value as the sum of
// unitary_value × quantity, rounded to cents.
type DeclaredValue struct{}

// InsuranceValue implements InsuranceCalculator.
func (DeclaredValue) InsuranceValue(products []melhorenvio.Product) float64 {
	total := decimal.Zero
	for _, p := range products {
		line := decimal.NewFromFloat(p.UnitaryValue).Mul(decimal.NewFromInt(int64(p.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}
