package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput() OrderInput {
	return OrderInput{
		ReferenceID: "abc123XYZ0",
		ItemName:    "Scarf",
		ItemPrice:   decimal.RequireFromString("20.00"),
		Shipping:    decimal.RequireFromString("3.50"),
		ReturnURL:   "http://pay.example.com/payment/success/abc123XYZ0",
		CancelURL:   "http://pay.example.com/payment/abc123XYZ0",
	}
}

func newTestServer(t *testing.T, orderStatus, captureStatus string, capturedBody *map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "cid", user)
		assert.Equal(t, "secret", pass)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		if capturedBody != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capturedBody))
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "PAYPAL-ORDER-1", "status": orderStatus})
	})
	mux.HandleFunc("/v2/checkout/orders/PAYPAL-ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "PAYPAL-ORDER-1", "status": captureStatus})
	})
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		Environment:  "sandbox",
		BrandName:    "LinkPay",
		BaseURL:      baseURL,
	})
	require.NoError(t, err)
	return client
}

func TestNew_ConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing client id", cfg: Config{ClientSecret: "secret"}},
		{name: "missing client secret", cfg: Config{ClientID: "cid"}},
		{name: "blank credentials", cfg: Config{ClientID: "  ", ClientSecret: "  "}},
		{name: "invalid base url", cfg: Config{ClientID: "cid", ClientSecret: "secret", BaseURL: "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrConfigInvalid)
		})
	}
}

func TestNew_EnvironmentSelectsBaseURL(t *testing.T) {
	sandbox, err := New(Config{ClientID: "cid", ClientSecret: "secret", Environment: "sandbox"})
	require.NoError(t, err)
	assert.Equal(t, sandboxBaseURL, sandbox.baseURL)

	live, err := New(Config{ClientID: "cid", ClientSecret: "secret", Environment: "live"})
	require.NoError(t, err)
	assert.Equal(t, liveBaseURL, live.baseURL)
}

func TestClient_CreateOrder(t *testing.T) {
	var body map[string]interface{}
	server := newTestServer(t, "CREATED", StatusCompleted, &body)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.CreateOrder(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, "PAYPAL-ORDER-1", result.OrderID)
	assert.Equal(t, "CREATED", result.Status)

	assert.Equal(t, "CAPTURE", body["intent"])

	units := body["purchase_units"].([]interface{})
	require.Len(t, units, 1)
	unit := units[0].(map[string]interface{})
	assert.Equal(t, "abc123XYZ0", unit["reference_id"])

	amount := unit["amount"].(map[string]interface{})
	assert.Equal(t, Currency, amount["currency_code"])
	assert.Equal(t, "23.50", amount["value"])
	breakdown := amount["breakdown"].(map[string]interface{})
	assert.Equal(t, "20.00", breakdown["item_total"].(map[string]interface{})["value"])
	assert.Equal(t, "3.50", breakdown["shipping"].(map[string]interface{})["value"])

	items := unit["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Scarf", item["name"])
	assert.Equal(t, "1", item["quantity"])
	assert.Equal(t, "20.00", item["unit_amount"].(map[string]interface{})["value"])

	appCtx := body["application_context"].(map[string]interface{})
	assert.Equal(t, "http://pay.example.com/payment/success/abc123XYZ0", appCtx["return_url"])
	assert.Equal(t, "http://pay.example.com/payment/abc123XYZ0", appCtx["cancel_url"])
	assert.Equal(t, "LinkPay", appCtx["brand_name"])
	assert.Equal(t, "NO_SHIPPING", appCtx["shipping_preference"])
	assert.Equal(t, "PAY_NOW", appCtx["user_action"])
}

func TestClient_CreateOrder_IncompleteInput(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")
	_, err := client.CreateOrder(context.Background(), OrderInput{})
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestClient_CreateOrder_ProviderError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateOrder(context.Background(), testInput())
	assert.ErrorIs(t, err, ErrResponseInvalid)
	assert.Contains(t, err.Error(), "422")
}

func TestClient_CreateOrder_AuthFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateOrder(context.Background(), testInput())
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestClient_CaptureOrder(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		server := newTestServer(t, "CREATED", StatusCompleted, nil)
		defer server.Close()

		client := newTestClient(t, server.URL)
		result, err := client.CaptureOrder(context.Background(), "PAYPAL-ORDER-1")

		require.NoError(t, err)
		assert.Equal(t, "PAYPAL-ORDER-1", result.OrderID)
		assert.True(t, result.Completed())
	})

	t.Run("declined", func(t *testing.T) {
		server := newTestServer(t, "CREATED", "DECLINED", nil)
		defer server.Close()

		client := newTestClient(t, server.URL)
		result, err := client.CaptureOrder(context.Background(), "PAYPAL-ORDER-1")

		require.NoError(t, err)
		assert.False(t, result.Completed())
	})

	t.Run("empty order id", func(t *testing.T) {
		client := newTestClient(t, "http://localhost:1")
		_, err := client.CaptureOrder(context.Background(), " ")
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})
}

func TestDisabled(t *testing.T) {
	gateway := Disabled{Reason: "missing credentials"}

	assert.False(t, gateway.Configured())

	_, err := gateway.CreateOrder(context.Background(), testInput())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "missing credentials")

	_, err = gateway.CaptureOrder(context.Background(), "PAYPAL-ORDER-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
