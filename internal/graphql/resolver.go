// Package graphql serves the cart operations over GraphQL.
package graphql

import (
	"context"

	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/internal/methods"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// QueryResolver resolves the fields of the Query type.
type QueryResolver interface {
	Health(ctx context.Context) (string, error)
	Methods(ctx context.Context) ([]methods.Method, error)
	CartInfo(ctx context.Context, input CartContextInput) (*CartInfo, error)
}

// MutationResolver resolves the fields of the Mutation type.
type MutationResolver interface {
	AddToCart(ctx context.Context, orderID int64, service int, products []*ProductInput, buyer *AddressInput) (*AddToCartResult, error)
	RemoveFromCart(ctx context.Context, orderID int64, cartItemID *string) (*RemoveFromCartResult, error)
	ValidateCart(ctx context.Context, payload CartPayloadInput) (*ValidationResult, error)
}

// Resolver is the root resolver for the GraphQL schema.
// It holds dependencies needed by all resolvers.
type Resolver struct {
	Cart    *cart.Service
	Catalog *methods.Catalog
	Logger  *otelzap.Logger
}

// NewResolver creates a new resolver with the given dependencies.
func NewResolver(service *cart.Service, catalog *methods.Catalog, logger *otelzap.Logger) *Resolver {
	return &Resolver{
		Cart:    service,
		Catalog: catalog,
		Logger:  logger,
	}
}

// Query returns the Query resolver.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

// Mutation returns the Mutation resolver.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

type queryResolver struct{ *Resolver }

func (r *queryResolver) Health(ctx context.Context) (string, error) {
	return "ok", nil
}

func (r *queryResolver) Methods(ctx context.Context) ([]methods.Method, error) {
	return r.Catalog.All(), nil
}

func (r *queryResolver) CartInfo(ctx context.Context, input CartContextInput) (*CartInfo, error) {
	return cartInfoToGraphQL(cart.Info(cartContextInputToModel(input))), nil
}

type mutationResolver struct{ *Resolver }

func (r *mutationResolver) AddToCart(ctx context.Context, orderID int64, service int, products []*ProductInput, buyer *AddressInput) (*AddToCartResult, error) {
	result, err := r.Cart.Add(ctx, orderID, productsInputToModel(products), addressInputToModel(buyer), service)
	if err != nil {
		r.Logger.Ctx(ctx).Error("addToCart failed", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return addResultToGraphQL(result), nil
}

func (r *mutationResolver) RemoveFromCart(ctx context.Context, orderID int64, cartItemID *string) (*RemoveFromCartResult, error) {
	removed, err := r.Cart.Remove(ctx, orderID, str(cartItemID))
	if err != nil {
		r.Logger.Ctx(ctx).Warn("removeFromCart failed", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return &RemoveFromCartResult{Success: removed}, nil
}

func (r *mutationResolver) ValidateCart(ctx context.Context, payload CartPayloadInput) (*ValidationResult, error) {
	errs := cart.Validate(payloadInputToModel(payload))
	if errs == nil {
		errs = []string{}
	}
	return &ValidationResult{Valid: len(errs) == 0, Errors: errs}, nil
}
