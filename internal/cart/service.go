package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/internal/telemetry"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MsgCartUnavailable is returned when the cart answers without an item id.
const MsgCartUnavailable = "Não foi possível enviar o pedido para o carrinho de compras"

// ErrUnknownCartItem is returned by Remove when the order has no known cart item.
var ErrUnknownCartItem = errors.New("no cart item known for order")

// AddResult is the outcome of Service.Add.
type AddResult struct {
	Success          bool
	ValidationErrors []string
	RemoteError      string
	Quotation        *melhorenvio.OrderQuotation
}

// MarshalJSON renders validation failures as an error list, remote failures
// as a single message and successes as the stored quotation.
func (r AddResult) MarshalJSON() ([]byte, error) {
	switch {
	case r.Success && r.Quotation != nil:
		return json.Marshal(struct {
			Success bool `json:"success"`
			*melhorenvio.OrderQuotation
		}{true, r.Quotation})
	case len(r.ValidationErrors) > 0:
		return json.Marshal(struct {
			Success bool     `json:"success"`
			Errors  []string `json:"errors"`
		}{false, r.ValidationErrors})
	default:
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Errors  string `json:"errors"`
		}{r.Success, r.RemoteError})
	}
}

// Service adds orders to and removes them from the Melhor Envio cart.
type Service struct {
	builder    *Builder
	client     melhorenvio.APIClient
	quotations QuotationStore
	metrics    *telemetry.Metrics
	logger     *otelzap.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewService creates a cart service. metrics may be nil; a nil tracer uses
// the global tracer provider.
func NewService(builder *Builder, client melhorenvio.APIClient, quotations QuotationStore, metrics *telemetry.Metrics, logger *otelzap.Logger, tracer trace.Tracer) *Service {
	if tracer == nil {
		tracer = otel.Tracer("github.com/tournevent/melhorenvio/internal/cart")
	}
	return &Service{
		builder:    builder,
		client:     client,
		quotations: quotations,
		metrics:    metrics,
		logger:     logger,
		tracer:     tracer,
		now:        time.Now,
	}
}

// Add builds and validates the payload of an order and posts it to the cart.
// Validation and remote failures are reported in the result; only
// collaborator and transport failures are returned as errors.
func (s *Service) Add(ctx context.Context, orderID int64, products []melhorenvio.Product, buyer *melhorenvio.Address, service int) (*AddResult, error) {
	carrier := melhorenvio.Classify(service).String()
	ctx, span := s.tracer.Start(ctx, "cart.Add", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int("shipping.service", service),
		attribute.String("shipping.carrier", carrier),
	))
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		s.metrics.RecordRequest("add", carrier, status, time.Since(start).Seconds())
		span.SetAttributes(attribute.String("cart.status", status))
	}()

	s.logger.Ctx(ctx).Info("Adding order to cart",
		zap.Int64("order_id", orderID),
		zap.Int("service", service),
		zap.Int("product_count", len(products)),
	)

	payload, err := s.builder.Build(ctx, orderID, products, buyer, service)
	if err != nil {
		s.fail(ctx, span, "Failed to build cart payload", orderID, err)
		return nil, fmt.Errorf("building payload for order %d: %w", orderID, err)
	}

	if errs := Validate(payload); len(errs) > 0 {
		status = "invalid"
		s.metrics.RecordValidationErrors(carrier, len(errs))
		s.logger.Ctx(ctx).Info("Cart payload rejected by validation",
			zap.Int64("order_id", orderID),
			zap.Strings("errors", errs),
		)
		return &AddResult{ValidationErrors: errs}, nil
	}

	resp, err := s.client.AddToCart(ctx, payload)
	if err != nil {
		s.fail(ctx, span, "Melhor Envio cart API error", orderID, err)
		return nil, fmt.Errorf("adding order %d to cart: %w", orderID, err)
	}

	result := resp.Classify()
	switch result.Kind {
	case melhorenvio.CartResultError:
		status = "rejected"
		s.logger.Ctx(ctx).Warn("Cart rejected order",
			zap.Int64("order_id", orderID),
			zap.Strings("errors", result.Messages),
		)
		return &AddResult{RemoteError: result.LastMessage()}, nil
	case melhorenvio.CartResultMalformed:
		status = "malformed"
		s.logger.Ctx(ctx).Warn("Cart response without item id", zap.Int64("order_id", orderID))
		return &AddResult{RemoteError: MsgCartUnavailable}, nil
	}

	quotation := &melhorenvio.OrderQuotation{
		OrderID:          orderID,
		CartItemID:       result.ID,
		Protocol:         result.Protocol,
		Status:           melhorenvio.StatusPending,
		ShippingMethodID: service,
		SelfTracking:     result.SelfTracking,
		UpdatedAt:        s.now(),
	}
	if err := s.quotations.SaveQuotation(ctx, quotation); err != nil {
		s.fail(ctx, span, "Failed to save quotation", orderID, err)
		return nil, fmt.Errorf("saving quotation for order %d: %w", orderID, err)
	}

	status = "success"
	s.logger.Ctx(ctx).Info("Order added to cart",
		zap.Int64("order_id", orderID),
		zap.String("cart_item_id", quotation.CartItemID),
		zap.String("protocol", quotation.Protocol),
	)
	return &AddResult{Success: true, Quotation: quotation}, nil
}

// Remove clears the local cart state of an order and deletes its cart item.
// It reports true when the item is no longer in the remote cart. An empty
// cartItemID is looked up in the stored quotation.
func (s *Service) Remove(ctx context.Context, orderID int64, cartItemID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "cart.Remove", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
	))
	defer span.End()

	start := time.Now()
	carrier := melhorenvio.CarrierOther.String()
	status := "error"
	defer func() {
		s.metrics.RecordRequest("remove", carrier, status, time.Since(start).Seconds())
	}()

	q, err := s.quotations.Quotation(ctx, orderID)
	switch {
	case err == nil:
		carrier = melhorenvio.Classify(q.ShippingMethodID).String()
		if cartItemID == "" {
			cartItemID = q.CartItemID
		}
	case !errors.Is(err, store.ErrNotFound):
		s.fail(ctx, span, "Failed to load quotation", orderID, err)
		return false, fmt.Errorf("loading quotation for order %d: %w", orderID, err)
	}
	if cartItemID == "" {
		return false, fmt.Errorf("order %d: %w", orderID, ErrUnknownCartItem)
	}
	span.SetAttributes(attribute.String("cart.item_id", cartItemID))

	if err := s.quotations.DeleteQuotation(ctx, orderID); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.fail(ctx, span, "Failed to delete quotation", orderID, err)
		return false, fmt.Errorf("deleting quotation for order %d: %w", orderID, err)
	}

	if err := s.client.RemoveFromCart(ctx, cartItemID); err != nil {
		s.logger.Ctx(ctx).Warn("Failed to delete cart item",
			zap.Int64("order_id", orderID),
			zap.String("cart_item_id", cartItemID),
			zap.Error(err),
		)
	}

	_, err = s.client.OrderInfo(ctx, cartItemID)
	switch {
	case errors.Is(err, melhorenvio.ErrOrderNotFound):
		status = "success"
		s.logger.Ctx(ctx).Info("Order removed from cart",
			zap.Int64("order_id", orderID),
			zap.String("cart_item_id", cartItemID),
		)
		return true, nil
	case err != nil:
		s.fail(ctx, span, "Failed to check cart item", orderID, err)
		return false, fmt.Errorf("checking cart item %s: %w", cartItemID, err)
	default:
		status = "still_in_cart"
		s.logger.Ctx(ctx).Warn("Order still in cart after removal",
			zap.Int64("order_id", orderID),
			zap.String("cart_item_id", cartItemID),
		)
		return false, nil
	}
}

func (s *Service) fail(ctx context.Context, span trace.Span, msg string, orderID int64, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.Ctx(ctx).Error(msg, zap.Int64("order_id", orderID), zap.Error(err))
}
