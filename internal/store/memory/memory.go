// Package memory provides an in-memory store for saved payloads, order
// quotations and invoices.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
)

// Store keeps every record in maps keyed by order id.
type Store struct {
	mu         sync.RWMutex
	payloads   map[int64]melhorenvio.SavedPayload
	quotations map[int64]melhorenvio.OrderQuotation
	invoices   map[int64]store.Invoice
	now        func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		payloads:   make(map[int64]melhorenvio.SavedPayload),
		quotations: make(map[int64]melhorenvio.OrderQuotation),
		invoices:   make(map[int64]store.Invoice),
		now:        time.Now,
	}
}

// ============================================================================
// Saved payloads
// ============================================================================

// SavedPayload returns the draft saved for an order.
func (s *Store) SavedPayload(ctx context.Context, orderID int64) (*melhorenvio.SavedPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payloads[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Products = append([]melhorenvio.Product(nil), p.Products...)
	return &p, nil
}

// SavePayload stores or replaces the draft of an order.
func (s *Store) SavePayload(ctx context.Context, payload *melhorenvio.SavedPayload) error {
	p := *payload
	p.Products = append([]melhorenvio.Product(nil), payload.Products...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[p.OrderID] = p
	return nil
}

// DeletePayload removes the draft of an order.
func (s *Store) DeletePayload(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payloads[orderID]; !ok {
		return store.ErrNotFound
	}
	delete(s.payloads, orderID)
	return nil
}

// ============================================================================
// Order quotations
// ============================================================================

// Quotation returns the cart state of an order.
func (s *Store) Quotation(ctx context.Context, orderID int64) (*melhorenvio.OrderQuotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotations[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &q, nil
}

// SaveQuotation upserts the cart state of an order.
func (s *Store) SaveQuotation(ctx context.Context, q *melhorenvio.OrderQuotation) error {
	record := *q
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotations[record.OrderID] = record
	return nil
}

// DeleteQuotation removes the cart state of an order.
func (s *Store) DeleteQuotation(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotations[orderID]; !ok {
		return store.ErrNotFound
	}
	delete(s.quotations, orderID)
	return nil
}

// Quotations lists every stored quotation ordered by order id.
func (s *Store) Quotations(ctx context.Context) ([]melhorenvio.OrderQuotation, error) {
	s.mu.RLock()
	out := make([]melhorenvio.OrderQuotation, 0, len(s.quotations))
	for _, q := range s.quotations {
		out = append(out, q)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

// ============================================================================
// Invoices
// ============================================================================

// Invoice returns the invoice of an order.
func (s *Store) Invoice(ctx context.Context, orderID int64) (*store.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &inv, nil
}

// SaveInvoice stores or replaces the invoice of an order.
func (s *Store) SaveInvoice(ctx context.Context, inv *store.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.OrderID] = *inv
	return nil
}
