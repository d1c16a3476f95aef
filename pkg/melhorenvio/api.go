// Package melhorenvio provides the Melhor Envio cart API models and client.
package melhorenvio

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
)

// APIClient defines the Melhor Envio API operations used by the cart.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// AddToCart posts a payload to the remote cart. POST /cart
	AddToCart(ctx context.Context, payload *CartPayload) (*CartResponse, error)

	// RemoveFromCart deletes an item from the remote cart. DELETE /cart/{id}
	RemoveFromCart(ctx context.Context, cartItemID string) error

	// OrderInfo fetches an order from the remote cart. GET /orders/{id}
	OrderInfo(ctx context.Context, cartItemID string) (*OrderInfo, error)

	// Calculate quotes shipping services. POST /me/shipment/calculate
	Calculate(ctx context.Context, req *CalculateRequest) ([]QuotationResult, error)

	// Agencies lists the drop-off agencies of a company in a city. GET /shipment/agencies
	Agencies(ctx context.Context, req *AgenciesRequest) ([]Agency, error)
}

// ============================================================================
// API Request/Response Types
// ============================================================================

// CartResponse is the raw body returned by POST /cart.
type CartResponse struct {
	ID           string          `json:"id,omitempty"`
	Protocol     string          `json:"protocol,omitempty"`
	SelfTracking string          `json:"self_tracking,omitempty"`
	Status       string          `json:"status,omitempty"`
	Message      string          `json:"message,omitempty"`
	Errors       json.RawMessage `json:"errors,omitempty"`
}

// UnmarshalJSON accepts numeric or string ids.
func (r *CartResponse) UnmarshalJSON(data []byte) error {
	type alias CartResponse
	var raw struct {
		alias
		ID json.RawMessage `json:"id,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = CartResponse(raw.alias)
	r.ID = rawScalar(raw.ID)
	return nil
}

// CartResultKind discriminates the outcome of a cart submission.
type CartResultKind int

const (
	CartResultMalformed CartResultKind = iota
	CartResultSuccess
	CartResultError
)

// CartResult is the interpreted outcome of POST /cart.
type CartResult struct {
	Kind         CartResultKind
	ID           string
	Protocol     string
	SelfTracking string
	Messages     []string
}

// LastMessage returns the last remote error message, or "" when there is none.
func (r CartResult) LastMessage() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1]
}

// Classify interprets the response: any error message makes it an error,
// a missing id makes it malformed.
func (r *CartResponse) Classify() CartResult {
	if r == nil {
		return CartResult{Kind: CartResultMalformed}
	}
	if msgs := FlattenMessages(r.Errors); len(msgs) > 0 {
		return CartResult{Kind: CartResultError, Messages: msgs}
	}
	if r.ID == "" {
		return CartResult{Kind: CartResultMalformed}
	}
	return CartResult{
		Kind:         CartResultSuccess,
		ID:           r.ID,
		Protocol:     r.Protocol,
		SelfTracking: r.SelfTracking,
	}
}

// OrderInfo is the subset of GET /orders/{id} used by the cart.
type OrderInfo struct {
	ID       string `json:"id"`
	Protocol string `json:"protocol"`
	Status   string `json:"status"`
	Tracking string `json:"tracking,omitempty"`
}

// CalculateRequest is the body of POST /me/shipment/calculate.
type CalculateRequest struct {
	From     PostalCodeRef `json:"from"`
	To       PostalCodeRef `json:"to"`
	Products []Product     `json:"products"`
	Services string        `json:"services,omitempty"`
	Options  *Settings     `json:"options,omitempty"`
}

// PostalCodeRef wraps a postal code in the calculate request.
type PostalCodeRef struct {
	PostalCode string `json:"postal_code"`
}

// AgenciesRequest filters GET /shipment/agencies.
type AgenciesRequest struct {
	CompanyID int
	StateAbbr string
	City      string
}

// errorBody is the error envelope returned by the API on non-2xx responses.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// ============================================================================
// Helpers
// ============================================================================

// FlattenMessages collects every message found in a JSON errors value, in
// document order. Arrays, nested arrays and objects of arrays are supported.
// Numbers and booleans inside a container count as messages too.
func FlattenMessages(raw json.RawMessage) []string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out []string
	inObject := []bool{}
	expectKey := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{':
				inObject = append(inObject, true)
				expectKey = true
			case '[':
				inObject = append(inObject, false)
				expectKey = false
			case '}', ']':
				inObject = inObject[:len(inObject)-1]
				expectKey = len(inObject) > 0 && inObject[len(inObject)-1]
			}
			continue
		}
		if expectKey {
			expectKey = false
			continue
		}
		if msg, ok := tokenMessage(tok, len(inObject) > 0); ok {
			out = append(out, msg)
		}
		if len(inObject) > 0 && inObject[len(inObject)-1] {
			expectKey = true
		}
	}
}

// tokenMessage renders a scalar token as a message. Outside a container only
// strings and truthy scalars count.
func tokenMessage(tok json.Token, nested bool) (string, bool) {
	switch v := tok.(type) {
	case string:
		return v, true
	case json.Number:
		if !nested && (v.String() == "0" || v.String() == "0.0") {
			return "", false
		}
		return v.String(), true
	case bool:
		if !nested && !v {
			return "", false
		}
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}
