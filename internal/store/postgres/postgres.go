// Package postgres provides a PostgreSQL store for saved payloads, order
// quotations and invoices.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS melhorenvio_payloads (
	order_id   BIGINT PRIMARY KEY,
	products   JSONB,
	buyer      JSONB,
	options    JSONB,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS melhorenvio_quotations (
	order_id           BIGINT PRIMARY KEY,
	cart_item_id       TEXT NOT NULL,
	protocol           TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL,
	shipping_method_id INTEGER NOT NULL,
	tracking           TEXT NOT NULL DEFAULT '',
	self_tracking      TEXT NOT NULL DEFAULT '',
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS melhorenvio_invoices (
	order_id    BIGINT PRIMARY KEY,
	number      TEXT NOT NULL DEFAULT '',
	invoice_key TEXT NOT NULL
);
`

// Store is a PostgreSQL-backed store.
type Store struct {
	db     *sql.DB
	logger *otelzap.Logger
}

// Open connects to the database at dsn.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// New creates a store on an open database.
func New(db *sql.DB, logger *otelzap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// ============================================================================
// Saved payloads
// ============================================================================

// SavedPayload returns the draft saved for an order.
func (s *Store) SavedPayload(ctx context.Context, orderID int64) (*melhorenvio.SavedPayload, error) {
	query := `
		SELECT products, buyer, options
		FROM melhorenvio_payloads
		WHERE order_id = $1
	`

	var products, buyer, options []byte
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(&products, &buyer, &options)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get saved payload", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}

	payload := &melhorenvio.SavedPayload{OrderID: orderID}
	if err := decodeJSON(products, &payload.Products); err != nil {
		return nil, fmt.Errorf("decoding saved products: %w", err)
	}
	if err := decodeJSON(buyer, &payload.Buyer); err != nil {
		return nil, fmt.Errorf("decoding saved buyer: %w", err)
	}
	if err := decodeJSON(options, &payload.Options); err != nil {
		return nil, fmt.Errorf("decoding saved options: %w", err)
	}
	return payload, nil
}

// SavePayload stores or replaces the draft of an order.
func (s *Store) SavePayload(ctx context.Context, payload *melhorenvio.SavedPayload) error {
	query := `
		INSERT INTO melhorenvio_payloads (order_id, products, buyer, options, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO UPDATE
		SET products = EXCLUDED.products,
			buyer = EXCLUDED.buyer,
			options = EXCLUDED.options,
			updated_at = EXCLUDED.updated_at
	`

	products, err := encodeJSON(payload.Products)
	if err != nil {
		return err
	}
	buyer, err := encodeJSON(payload.Buyer)
	if err != nil {
		return err
	}
	options, err := encodeJSON(payload.Options)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, payload.OrderID, products, buyer, options, time.Now()); err != nil {
		s.logger.Error("Failed to save payload", zap.Int64("order_id", payload.OrderID), zap.Error(err))
		return err
	}
	return nil
}

// DeletePayload removes the draft of an order.
func (s *Store) DeletePayload(ctx context.Context, orderID int64) error {
	return s.deleteByOrder(ctx, "DELETE FROM melhorenvio_payloads WHERE order_id = $1", orderID)
}

// ============================================================================
// Order quotations
// ============================================================================

// Quotation returns the cart state of an order.
func (s *Store) Quotation(ctx context.Context, orderID int64) (*melhorenvio.OrderQuotation, error) {
	query := `
		SELECT order_id, cart_item_id, protocol, status, shipping_method_id, tracking, self_tracking, updated_at
		FROM melhorenvio_quotations
		WHERE order_id = $1
	`

	var q melhorenvio.OrderQuotation
	var status string
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(
		&q.OrderID,
		&q.CartItemID,
		&q.Protocol,
		&status,
		&q.ShippingMethodID,
		&q.Tracking,
		&q.SelfTracking,
		&q.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get quotation", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	q.Status = melhorenvio.QuotationStatus(status)
	return &q, nil
}

// SaveQuotation upserts the cart state of an order.
func (s *Store) SaveQuotation(ctx context.Context, q *melhorenvio.OrderQuotation) error {
	query := `
		INSERT INTO melhorenvio_quotations
			(order_id, cart_item_id, protocol, status, shipping_method_id, tracking, self_tracking, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO UPDATE
		SET cart_item_id = EXCLUDED.cart_item_id,
			protocol = EXCLUDED.protocol,
			status = EXCLUDED.status,
			shipping_method_id = EXCLUDED.shipping_method_id,
			tracking = EXCLUDED.tracking,
			self_tracking = EXCLUDED.self_tracking,
			updated_at = EXCLUDED.updated_at
	`

	updatedAt := q.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		q.OrderID,
		q.CartItemID,
		q.Protocol,
		string(q.Status),
		q.ShippingMethodID,
		q.Tracking,
		q.SelfTracking,
		updatedAt,
	)
	if err != nil {
		s.logger.Error("Failed to save quotation", zap.Int64("order_id", q.OrderID), zap.Error(err))
		return err
	}
	return nil
}

// DeleteQuotation removes the cart state of an order.
func (s *Store) DeleteQuotation(ctx context.Context, orderID int64) error {
	return s.deleteByOrder(ctx, "DELETE FROM melhorenvio_quotations WHERE order_id = $1", orderID)
}

// ============================================================================
// Invoices
// ============================================================================

// Invoice returns the invoice of an order.
func (s *Store) Invoice(ctx context.Context, orderID int64) (*store.Invoice, error) {
	query := `
		SELECT order_id, number, invoice_key
		FROM melhorenvio_invoices
		WHERE order_id = $1
	`

	var inv store.Invoice
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(&inv.OrderID, &inv.Number, &inv.Key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get invoice", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return &inv, nil
}

// SaveInvoice stores or replaces the invoice of an order.
func (s *Store) SaveInvoice(ctx context.Context, inv *store.Invoice) error {
	query := `
		INSERT INTO melhorenvio_invoices (order_id, number, invoice_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO UPDATE
		SET number = EXCLUDED.number, invoice_key = EXCLUDED.invoice_key
	`

	if _, err := s.db.ExecContext(ctx, query, inv.OrderID, inv.Number, inv.Key); err != nil {
		s.logger.Error("Failed to save invoice", zap.Int64("order_id", inv.OrderID), zap.Error(err))
		return err
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Store) deleteByOrder(ctx context.Context, query string, orderID int64) error {
	res, err := s.db.ExecContext(ctx, query, orderID)
	if err != nil {
		s.logger.Error("Failed to delete record", zap.Int64("order_id", orderID), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func encodeJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding column: %w", err)
	}
	return b, nil
}

func decodeJSON(b []byte, v interface{}) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}
