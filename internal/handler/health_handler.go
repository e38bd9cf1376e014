package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"linkpay/internal/config"
	"linkpay/internal/paypal"
)

// HealthHandler exposes gateway diagnostics. The config echo endpoint
// is restricted to sandbox mode.
type HealthHandler struct {
	cfg     *config.Config
	gateway paypal.Gateway
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg *config.Config, gateway paypal.Gateway) *HealthHandler {
	return &HealthHandler{cfg: cfg, gateway: gateway}
}

// PayPalHealth godoc
// @Summary Gateway initialization status
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/paypal [get]
func (h *HealthHandler) PayPalHealth(c echo.Context) error {
	status := "OK"
	if !h.gateway.Configured() {
		status = "ERROR"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"paypal_initialized":     h.gateway.Configured(),
		"paypal_environment":     h.cfg.PayPalEnv,
		"credentials_configured": h.cfg.PayPalClientID != "" && h.cfg.PayPalSecret != "",
		"client_id_length":       len(h.cfg.PayPalClientID),
		"status":                 status,
	})
}

// TestPayPalConfig godoc
// @Summary Masked gateway configuration echo, sandbox only
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /test-paypal-config [get]
func (h *HealthHandler) TestPayPalConfig(c echo.Context) error {
	if !h.cfg.IsSandbox() {
		return echo.NewHTTPError(http.StatusForbidden, echo.Map{
			"error": "This endpoint is only available in sandbox mode",
		})
	}

	clientID := "NOT SET"
	if h.cfg.PayPalClientID != "" {
		clientID = maskPrefix(h.cfg.PayPalClientID)
	}
	secret := "NOT SET"
	if h.cfg.PayPalSecret != "" {
		secret = "SET"
	}
	configStatus := "MISSING CREDENTIALS"
	if h.cfg.PayPalClientID != "" && h.cfg.PayPalSecret != "" {
		configStatus = "OK"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"paypal_client_id":   clientID,
		"paypal_secret":      secret,
		"paypal_environment": h.cfg.PayPalEnv,
		"config_status":      configStatus,
	})
}

func maskPrefix(s string) string {
	if len(s) <= 10 {
		return s + "..."
	}
	return s[:10] + "..."
}
