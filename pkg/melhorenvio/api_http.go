package melhorenvio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL   string
	Token     string
	UserAgent string // Melhor Envio rejects requests without a contact User-Agent
	Timeout   time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "melhorenvio-cart/1.0"
	}

	return &HTTPAPIClient{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// AddToCart posts a payload to the remote cart.
// Validation failures come back as 422 with an errors body, which is
// returned as a CartResponse so the caller can surface the message.
func (c *HTTPAPIClient) AddToCart(ctx context.Context, payload *CartPayload) (*CartResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/cart", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError ||
		resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusTooManyRequests {
		return nil, c.parseError(resp.StatusCode, body)
	}

	var result CartResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode cart response: %w", err)
		}
	}

	return &result, nil
}

// RemoveFromCart deletes an item from the remote cart.
func (c *HTTPAPIClient) RemoveFromCart(ctx context.Context, cartItemID string) error {
	path := fmt.Sprintf("/cart/%s", url.PathEscape(cartItemID))

	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return c.parseError(resp.StatusCode, body)
	}

	return nil
}

// OrderInfo fetches an order. A 404 is reported as ErrOrderNotFound.
func (c *HTTPAPIClient) OrderInfo(ctx context.Context, cartItemID string) (*OrderInfo, error) {
	path := fmt.Sprintf("/orders/%s", url.PathEscape(cartItemID))

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp.StatusCode, body)
	}

	var result OrderInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	if result.ID == "" {
		return nil, NewAPIError("ORDER_NOT_FOUND", "order not in cart").
			WithStatusCode(resp.StatusCode).
			WithCause(ErrOrderNotFound)
	}

	return &result, nil
}

// Calculate quotes shipping services for a set of products.
func (c *HTTPAPIClient) Calculate(ctx context.Context, req *CalculateRequest) ([]QuotationResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/me/shipment/calculate", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read calculate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp.StatusCode, body)
	}

	// A single service filter returns one object instead of a list.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one QuotationResult
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("failed to decode calculate response: %w", err)
		}
		return []QuotationResult{one}, nil
	}

	var results []QuotationResult
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, fmt.Errorf("failed to decode calculate response: %w", err)
	}
	return results, nil
}

// Agencies lists the agencies of a company in a city.
func (c *HTTPAPIClient) Agencies(ctx context.Context, req *AgenciesRequest) ([]Agency, error) {
	query := url.Values{}
	query.Set("company", strconv.Itoa(req.CompanyID))
	if req.StateAbbr != "" {
		query.Set("state", req.StateAbbr)
	}
	if req.City != "" {
		query.Set("city", req.City)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/shipment/agencies?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read agencies response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp.StatusCode, body)
	}

	var agencies []Agency
	if err := json.Unmarshal(body, &agencies); err != nil {
		return nil, fmt.Errorf("failed to decode agencies response: %w", err)
	}
	return agencies, nil
}

// doRequest performs an HTTP request with proper headers and authentication.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewAPIError("TRANSPORT", "request to Melhor Envio failed").
			WithCause(err).
			WithRetryable(true)
	}
	return resp, nil
}

// parseError extracts error information from a non-2xx response body.
func (c *HTTPAPIClient) parseError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))

	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Message != "":
			msg = envelope.Message
		case envelope.Error != "":
			msg = envelope.Error
		default:
			if msgs := FlattenMessages(envelope.Errors); len(msgs) > 0 {
				msg = msgs[len(msgs)-1]
			}
		}
	}

	return errorForStatus(status, msg)
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
