package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("paypal config invalid")
	ErrNotConfigured   = errors.New("paypal gateway not configured")
	ErrAuthFailed      = errors.New("paypal auth failed")
	ErrRequestFailed   = errors.New("paypal request failed")
	ErrResponseInvalid = errors.New("paypal response invalid")
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"
	defaultTimeout = 12 * time.Second

	// Currency is fixed for the whole service.
	Currency = "EUR"

	// StatusCompleted is the only provider status treated as a successful capture.
	StatusCompleted = "COMPLETED"
)

// Gateway abstracts the two provider calls a checkout needs, so services
// can be tested without network access and so an unconfigured deployment
// degrades to a typed stub instead of a nil client.
type Gateway interface {
	CreateOrder(ctx context.Context, input OrderInput) (*OrderResult, error)
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error)
	Configured() bool
}

// Config builds a Client from environment-provided credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	Environment  string // "sandbox" or "live"
	BrandName    string
	// BaseURL overrides the environment-derived API host. Tests point it
	// at an httptest server.
	BaseURL string
}

// OrderInput describes a single-item order: one product plus shipping.
type OrderInput struct {
	ReferenceID string
	ItemName    string
	ItemPrice   decimal.Decimal
	Shipping    decimal.Decimal
	ReturnURL   string
	CancelURL   string
}

// Total is the order total: item price plus shipping.
func (in OrderInput) Total() decimal.Decimal {
	return in.ItemPrice.Add(in.Shipping)
}

// OrderResult carries the provider's order id and status after creation.
type OrderResult struct {
	OrderID string `json:"orderID"`
	Status  string `json:"status"`
}

// CaptureResult carries the provider's final status after a capture attempt.
type CaptureResult struct {
	OrderID string
	Status  string
}

// Completed reports whether the capture finished in the paid state.
func (r *CaptureResult) Completed() bool {
	return r != nil && r.Status == StatusCompleted
}

// Client calls the PayPal v2 Checkout API over plain REST.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// New validates the configuration and returns a ready client. Missing or
// blank credentials are a configuration error; callers fall back to
// Disabled so the rest of the application keeps serving.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("%w: client secret is required", ErrConfigInvalid)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		if cfg.Environment == "live" {
			baseURL = liveBaseURL
		} else {
			baseURL = sandboxBaseURL
		}
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: base url is invalid", ErrConfigInvalid)
	}
	return &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}, nil
}

// Configured implements Gateway.
func (c *Client) Configured() bool { return true }

// CreateOrder creates a provider order with intent CAPTURE for a single
// item plus shipping, amounts formatted to two decimal places.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*OrderResult, error) {
	if strings.TrimSpace(input.ReferenceID) == "" || strings.TrimSpace(input.ItemName) == "" {
		return nil, fmt.Errorf("%w: order input is incomplete", ErrConfigInvalid)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": input.ReferenceID,
				"amount": map[string]interface{}{
					"currency_code": Currency,
					"value":         input.Total().StringFixed(2),
					"breakdown": map[string]interface{}{
						"item_total": map[string]string{
							"currency_code": Currency,
							"value":         input.ItemPrice.StringFixed(2),
						},
						"shipping": map[string]string{
							"currency_code": Currency,
							"value":         input.Shipping.StringFixed(2),
						},
					},
				},
				"items": []map[string]interface{}{
					{
						"name": input.ItemName,
						"unit_amount": map[string]string{
							"currency_code": Currency,
							"value":         input.ItemPrice.StringFixed(2),
						},
						"quantity": "1",
					},
				},
			},
		},
		"application_context": map[string]string{
			"return_url":          input.ReturnURL,
			"cancel_url":          input.CancelURL,
			"brand_name":          c.cfg.BrandName,
			"shipping_preference": "NO_SHIPPING",
			"user_action":         "PAY_NOW",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request failed", ErrRequestFailed)
	}

	respBody, statusCode, err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", token, body)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create order status %d: %s", ErrResponseInvalid, statusCode, truncate(respBody))
	}

	var raw struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	if raw.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrResponseInvalid)
	}
	if raw.Status == "" {
		raw.Status = "CREATED"
	}
	return &OrderResult{OrderID: raw.ID, Status: raw.Status}, nil
}

// CaptureOrder captures a previously created order and reports the final
// provider status. Only StatusCompleted means the buyer has paid.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is empty", ErrConfigInvalid)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	respBody, statusCode, err := c.doJSON(ctx, http.MethodPost, endpoint, token, []byte("{}"))
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: capture status %d: %s", ErrResponseInvalid, statusCode, truncate(respBody))
	}

	var raw struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	if raw.ID == "" {
		raw.ID = orderID
	}
	if raw.Status == "" {
		return nil, fmt.Errorf("%w: missing capture status", ErrResponseInvalid)
	}
	return &CaptureResult{OrderID: raw.ID, Status: raw.Status}, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	values := url.Values{}
	values.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build token request failed", ErrAuthFailed)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request token failed: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response failed", ErrAuthFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token status %d", ErrAuthFailed, resp.StatusCode)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode token response failed", ErrAuthFailed)
	}
	if strings.TrimSpace(parsed.AccessToken) == "" {
		return "", fmt.Errorf("%w: access_token is empty", ErrAuthFailed)
	}
	return parsed.AccessToken, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, token string, body []byte) ([]byte, int, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: http request failed: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	return respBody, resp.StatusCode, nil
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

func truncate(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max]
	}
	return s
}

// Disabled is the Gateway used when credentials are missing at startup.
// Every call fails with ErrNotConfigured; link creation and browsing
// stay functional.
type Disabled struct {
	Reason string
}

// Configured implements Gateway.
func (Disabled) Configured() bool { return false }

// CreateOrder implements Gateway.
func (d Disabled) CreateOrder(context.Context, OrderInput) (*OrderResult, error) {
	return nil, d.err()
}

// CaptureOrder implements Gateway.
func (d Disabled) CaptureOrder(context.Context, string) (*CaptureResult, error) {
	return nil, d.err()
}

func (d Disabled) err() error {
	if d.Reason != "" {
		return fmt.Errorf("%w: %s", ErrNotConfigured, d.Reason)
	}
	return ErrNotConfigured
}
