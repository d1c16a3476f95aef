package cart

import (
	"context"

	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// AgencySelection holds the agencies picked by the merchant per carrier.
// Zero means no selection.
type AgencySelection struct {
	Jadlog     int64
	AzulCargo  int64
	LatamCargo int64
}

func (s AgencySelection) forCarrier(c melhorenvio.Carrier) int64 {
	switch c {
	case melhorenvio.CarrierJadlog:
		return s.Jadlog
	case melhorenvio.CarrierAzulCargo:
		return s.AzulCargo
	case melhorenvio.CarrierLatamCargo:
		return s.LatamCargo
	default:
		return 0
	}
}

// AgencyResolver picks the drop-off agency of a shipping service.
type AgencyResolver struct {
	selection AgencySelection
	lister    AgencyLister
	seller    SellerProvider
	logger    *otelzap.Logger
}

// NewAgencyResolver creates a resolver. lister and seller may be nil, in
// which case only the merchant selection is used.
func NewAgencyResolver(selection AgencySelection, lister AgencyLister, seller SellerProvider, logger *otelzap.Logger) *AgencyResolver {
	return &AgencyResolver{
		selection: selection,
		lister:    lister,
		seller:    seller,
		logger:    logger,
	}
}

// Resolve returns the selected agency of the service's carrier, falling back
// to any agency in the seller's city. It returns nil for carriers without
// agencies and when no agency can be found.
func (r *AgencyResolver) Resolve(ctx context.Context, service int) *int64 {
	carrier := melhorenvio.Classify(service)
	if !carrier.RequiresAgency() {
		return nil
	}

	if id := r.selection.forCarrier(carrier); id != 0 {
		return &id
	}

	if r.lister == nil || r.seller == nil {
		return nil
	}

	seller, err := r.seller.Seller(ctx)
	if err != nil || seller == nil {
		r.logger.Warn("Failed to load seller for agency lookup",
			zap.String("carrier", carrier.String()),
			zap.Error(err),
		)
		return nil
	}

	agencies, err := r.lister.Agencies(ctx, &melhorenvio.AgenciesRequest{
		CompanyID: carrier.CompanyID(),
		StateAbbr: seller.StateAbbr,
		City:      seller.City,
	})
	if err != nil {
		r.logger.Warn("Failed to list agencies",
			zap.String("carrier", carrier.String()),
			zap.String("city", seller.City),
			zap.Error(err),
		)
		return nil
	}
	if len(agencies) == 0 {
		r.logger.Info("No agency found in seller city",
			zap.String("carrier", carrier.String()),
			zap.String("city", seller.City),
		)
		return nil
	}

	id := agencies[0].ID
	return &id
}
