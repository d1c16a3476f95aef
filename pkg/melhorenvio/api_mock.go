package melhorenvio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
// Without hooks it behaves like an in-memory remote cart.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnAddToCart      func(ctx context.Context, payload *CartPayload) (*CartResponse, error)
	OnRemoveFromCart func(ctx context.Context, cartItemID string) error
	OnOrderInfo      func(ctx context.Context, cartItemID string) (*OrderInfo, error)
	OnCalculate      func(ctx context.Context, req *CalculateRequest) ([]QuotationResult, error)
	OnAgencies       func(ctx context.Context, req *AgenciesRequest) ([]Agency, error)

	mu       sync.Mutex
	cart     map[string]*CartPayload
	Payloads []*CartPayload
	Removed  []string
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{
		cart: make(map[string]*CartPayload),
	}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return NewAPIError("MOCK_ERROR", "Simulated API error").WithCause(ErrServiceUnavailable)
	}
	return nil
}

// AddToCart records the payload and returns a new cart item.
func (m *MockAPIClient) AddToCart(ctx context.Context, payload *CartPayload) (*CartResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Payloads = append(m.Payloads, payload)
	m.mu.Unlock()

	if m.OnAddToCart != nil {
		return m.OnAddToCart(ctx, payload)
	}

	id := uuid.New().String()
	m.mu.Lock()
	m.cart[id] = payload
	m.mu.Unlock()

	now := time.Now()
	return &CartResponse{
		ID:           id,
		Protocol:     fmt.Sprintf("ORD-%d", now.UnixNano()%100000000),
		SelfTracking: fmt.Sprintf("ME%d", now.UnixNano()%1000000000),
		Status:       string(StatusPending),
	}, nil
}

// RemoveFromCart deletes a cart item.
func (m *MockAPIClient) RemoveFromCart(ctx context.Context, cartItemID string) error {
	if err := m.simulate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.Removed = append(m.Removed, cartItemID)
	m.mu.Unlock()

	if m.OnRemoveFromCart != nil {
		return m.OnRemoveFromCart(ctx, cartItemID)
	}

	m.mu.Lock()
	delete(m.cart, cartItemID)
	m.mu.Unlock()
	return nil
}

// OrderInfo returns the cart item or ErrOrderNotFound.
func (m *MockAPIClient) OrderInfo(ctx context.Context, cartItemID string) (*OrderInfo, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnOrderInfo != nil {
		return m.OnOrderInfo(ctx, cartItemID)
	}

	m.mu.Lock()
	_, ok := m.cart[cartItemID]
	m.mu.Unlock()
	if !ok {
		return nil, NewAPIError("HTTP_404", "order not in cart").WithStatusCode(404).WithCause(ErrOrderNotFound)
	}

	return &OrderInfo{ID: cartItemID, Status: string(StatusPending)}, nil
}

// Calculate returns one quotation per requested Correios and Jadlog service.
func (m *MockAPIClient) Calculate(ctx context.Context, req *CalculateRequest) ([]QuotationResult, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnCalculate != nil {
		return m.OnCalculate(ctx, req)
	}

	var weight float64
	for _, p := range req.Products {
		weight += p.Weight * float64(p.Quantity)
	}
	if weight == 0 {
		weight = 0.3
	}
	pkg := []QuotationPackage{{
		Weight:     weight,
		Dimensions: Dimensions{Height: 11, Width: 16, Length: 18},
	}}

	return []QuotationResult{
		{
			ID:            ServicePAC,
			Name:          "PAC",
			Price:         18.52,
			DeliveryTime:  6,
			DeliveryRange: DeliveryRange{Min: 5, Max: 6},
			Company:       Company{ID: 1, Name: "Correios"},
			Packages:      pkg,
		},
		{
			ID:            ServiceSEDEX,
			Name:          "SEDEX",
			Price:         29.90,
			DeliveryTime:  2,
			DeliveryRange: DeliveryRange{Min: 1, Max: 2},
			Company:       Company{ID: 1, Name: "Correios"},
			Packages:      pkg,
		},
		{
			ID:            ServiceJadlogPackage,
			Name:          ".Package",
			Price:         16.40,
			DeliveryTime:  5,
			DeliveryRange: DeliveryRange{Min: 4, Max: 5},
			Company:       Company{ID: 2, Name: "Jadlog"},
			Packages:      pkg,
		},
	}, nil
}

// Agencies returns one agency in the requested city.
func (m *MockAPIClient) Agencies(ctx context.Context, req *AgenciesRequest) ([]Agency, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnAgencies != nil {
		return m.OnAgencies(ctx, req)
	}

	return []Agency{
		{
			ID:        int64(1000 + req.CompanyID),
			Name:      fmt.Sprintf("Agência %s", req.City),
			CompanyID: req.CompanyID,
			City:      req.City,
			StateAbbr: req.StateAbbr,
		},
	}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
