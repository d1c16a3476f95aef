// Package store holds the records shared by the payload, quotation and
// invoice stores.
package store

import "errors"

// ErrNotFound is returned when no record exists for an order.
var ErrNotFound = errors.New("record not found")

// Invoice is the fiscal document issued for an order.
type Invoice struct {
	OrderID int64  `json:"order_id"`
	Number  string `json:"number,omitempty"`
	Key     string `json:"key"`
}
