// Package cart assembles, validates and submits Melhor Envio cart payloads
// and keeps the local order-quotation state in step with the remote cart.
package cart

import (
	"context"

	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

// PayloadStore reads the draft saved for an order.
// A missing draft is reported as store.ErrNotFound.
type PayloadStore interface {
	SavedPayload(ctx context.Context, orderID int64) (*melhorenvio.SavedPayload, error)
}

// QuotationStore persists the cart state of orders.
type QuotationStore interface {
	Quotation(ctx context.Context, orderID int64) (*melhorenvio.OrderQuotation, error)
	SaveQuotation(ctx context.Context, q *melhorenvio.OrderQuotation) error
	DeleteQuotation(ctx context.Context, orderID int64) error
}

// InvoiceProvider returns the invoice issued for an order, or store.ErrNotFound.
type InvoiceProvider interface {
	Invoice(ctx context.Context, orderID int64) (*store.Invoice, error)
}

// SellerProvider returns the sender address.
type SellerProvider interface {
	Seller(ctx context.Context) (*melhorenvio.Address, error)
}

// QuoteRequest describes the shipment to quote.
type QuoteRequest struct {
	OrderID  int64
	From     *melhorenvio.Address
	To       *melhorenvio.Address
	Products []melhorenvio.Product
}

// QuotationProvider quotes every shipping service for a shipment.
type QuotationProvider interface {
	Quote(ctx context.Context, req QuoteRequest) ([]melhorenvio.QuotationResult, error)
}

// OptionsProvider returns the store-level optional services.
type OptionsProvider interface {
	Settings(ctx context.Context) (*melhorenvio.Settings, error)
}

// InsuranceCalculator derives the declared value of a product list.
type InsuranceCalculator interface {
	InsuranceValue(products []melhorenvio.Product) float64
}

// AgencyLister lists carrier agencies. melhorenvio.APIClient satisfies it.
type AgencyLister interface {
	Agencies(ctx context.Context, req *melhorenvio.AgenciesRequest) ([]melhorenvio.Agency, error)
}
