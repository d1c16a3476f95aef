package cart_test

import (
	"context"

	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

func fullAddress() *melhorenvio.Address {
	return &melhorenvio.Address{
		Name:       "Maria Silva",
		Phone:      "11999990000",
		Email:      "maria@example.com",
		Document:   "12345678909",
		Address:    "Av. Paulista",
		Number:     "1000",
		District:   "Bela Vista",
		City:       "São Paulo",
		StateAbbr:  "SP",
		PostalCode: "01310-100",
	}
}

func validProduct(name string) melhorenvio.Product {
	return melhorenvio.Product{
		ID:           name,
		Name:         name,
		Quantity:     1,
		UnitaryValue: 49.90,
		Weight:       0.3,
		Width:        11,
		Height:       2,
		Length:       16,
	}
}

func validVolume() melhorenvio.Volume {
	return melhorenvio.Volume{Height: 2, Width: 11, Length: 16, Weight: 0.3}
}

func agencyID(id int64) *int64 {
	return &id
}

// quoteFunc adapts a function to cart.QuotationProvider.
type quoteFunc func(ctx context.Context, req cart.QuoteRequest) ([]melhorenvio.QuotationResult, error)

func (f quoteFunc) Quote(ctx context.Context, req cart.QuoteRequest) ([]melhorenvio.QuotationResult, error) {
	return f(ctx, req)
}

// quotedPackages returns a provider quoting one result per service with the given packages.
func quotedPackages(packages []melhorenvio.QuotationPackage, services ...int) quoteFunc {
	return func(ctx context.Context, req cart.QuoteRequest) ([]melhorenvio.QuotationResult, error) {
		results := make([]melhorenvio.QuotationResult, 0, len(services))
		for _, id := range services {
			results = append(results, melhorenvio.QuotationResult{
				ID:       id,
				Price:    20,
				Packages: packages,
			})
		}
		return results, nil
	}
}

func onePackage() []melhorenvio.QuotationPackage {
	return []melhorenvio.QuotationPackage{{
		Weight:     0.3,
		Dimensions: melhorenvio.Dimensions{Height: 2, Width: 11, Length: 16},
	}}
}
