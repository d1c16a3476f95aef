package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

// BuilderDeps are the collaborators of a Builder.
type BuilderDeps struct {
	Payloads  PayloadStore
	Invoices  InvoiceProvider
	Seller    SellerProvider
	Quotes    QuotationProvider
	Options   OptionsProvider
	Insurance InsuranceCalculator
	Agencies  *AgencyResolver
}

// Builder assembles cart payloads from saved drafts and fresh order data.
type Builder struct {
	payloads  PayloadStore
	invoices  InvoiceProvider
	seller    SellerProvider
	quotes    QuotationProvider
	options   OptionsProvider
	insurance InsuranceCalculator
	agencies  *AgencyResolver
}

// NewBuilder creates a payload builder. A nil Insurance uses DeclaredValue.
func NewBuilder(deps BuilderDeps) *Builder {
	insurance := deps.Insurance
	if insurance == nil {
		insurance = DeclaredValue{}
	}
	return &Builder{
		payloads:  deps.Payloads,
		invoices:  deps.Invoices,
		seller:    deps.Seller,
		quotes:    deps.Quotes,
		options:   deps.Options,
		insurance: insurance,
		agencies:  deps.Agencies,
	}
}

// Build assembles the cart payload of an order. Saved products, buyer and
// options take precedence over the supplied ones. Postal codes are sent as
// digits only; the caller's addresses are not modified.
func (b *Builder) Build(ctx context.Context, orderID int64, products []melhorenvio.Product, buyer *melhorenvio.Address, service int) (*melhorenvio.CartPayload, error) {
	saved, err := b.payloads.SavedPayload(ctx, orderID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading saved payload: %w", err)
	}

	products = withoutVirtual(resolve(savedProducts(saved), products))
	buyer = normalizedAddress(resolve(savedBuyer(saved), buyer))

	from, err := b.seller.Seller(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading seller: %w", err)
	}
	from = normalizedAddress(from)

	results, err := b.quotes.Quote(ctx, QuoteRequest{
		OrderID:  orderID,
		From:     from,
		To:       buyer,
		Products: products,
	})
	if err != nil {
		return nil, fmt.Errorf("quoting order: %w", err)
	}

	settings, err := resolveFunc(savedSettings(saved), func() (*melhorenvio.Settings, error) {
		return b.options.Settings(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("loading options: %w", err)
	}
	if settings == nil {
		settings = &melhorenvio.Settings{}
	}

	var insuranceValue float64
	if melhorenvio.InsuranceRequired(settings.InsuranceValue, service) {
		insuranceValue = b.insurance.InsuranceValue(products)
	}

	invoice, nonCommercial, err := b.invoice(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var agency *int64
	if b.agencies != nil {
		agency = b.agencies.Resolve(ctx, service)
	}

	return &melhorenvio.CartPayload{
		From:     from,
		To:       buyer,
		Agency:   agency,
		Service:  service,
		Products: products,
		Volumes:  ExtractVolumes(results, service),
		Options: &melhorenvio.Options{
			InsuranceValue: insuranceValue,
			Receipt:        settings.Receipt,
			OwnHand:        settings.OwnHand,
			NonCommercial:  nonCommercial,
			Invoice:        invoice,
			Platform:       melhorenvio.Platform,
		},
	}, nil
}

// invoice returns the invoice reference of an order. Orders without an
// invoice ship as non-commercial.
func (b *Builder) invoice(ctx context.Context, orderID int64) (*melhorenvio.Invoice, bool, error) {
	if b.invoices == nil {
		return nil, true, nil
	}
	inv, err := b.invoices.Invoice(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading invoice: %w", err)
	}
	return &melhorenvio.Invoice{Key: inv.Key}, false, nil
}
