package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"linkpay/internal/errors"
	"linkpay/internal/service"
)

// CheckoutHandler serves the JSON endpoints the provider's checkout
// widget calls: order creation, capture, and the status projection.
type CheckoutHandler struct {
	checkout service.CheckoutService
	links    service.LinkService
	sandbox  bool
}

// NewCheckoutHandler creates a new checkout handler. In sandbox mode
// gateway diagnostics are included in error responses.
func NewCheckoutHandler(checkout service.CheckoutService, links service.LinkService, sandbox bool) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, links: links, sandbox: sandbox}
}

// CreateOrderRequest identifies the link an order is created for.
type CreateOrderRequest struct {
	UniqueID string `json:"unique_id" validate:"required"`
}

// CaptureOrderRequest identifies the provider order and its link.
type CaptureOrderRequest struct {
	OrderID  string `json:"orderID" validate:"required"`
	UniqueID string `json:"unique_id" validate:"required"`
}

// CaptureResponse is returned after a successful capture.
type CaptureResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// CreateOrder godoc
// @Summary Create a provider order for a payment link
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Link token"
// @Success 200 {object} paypal.OrderResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /create-paypal-order [post]
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	result, err := h.checkout.CreateOrder(c.Request().Context(), req.UniqueID)
	if err != nil {
		return h.gatewayError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CaptureOrder godoc
// @Summary Capture a provider order and mark the link paid
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body CaptureOrderRequest true "Order and link"
// @Success 200 {object} CaptureResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /capture-paypal-order [post]
func (h *CheckoutHandler) CaptureOrder(c echo.Context) error {
	var req CaptureOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	_, err := h.checkout.CaptureOrder(c.Request().Context(), req.OrderID, req.UniqueID)
	if err != nil {
		if stderrors.Is(err, errors.ErrOrderNotCompleted) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  "error",
				"message": "Payment not completed",
			})
		}
		return h.gatewayError(c, err)
	}

	return c.JSON(http.StatusOK, CaptureResponse{
		Status:   "success",
		Message:  "Payment completed successfully",
		Redirect: "/payment/success/" + req.UniqueID,
	})
}

// PaymentStatus godoc
// @Summary Status projection for a payment link
// @Tags checkout
// @Produce json
// @Param uniqueID path string true "Link token"
// @Success 200 {object} service.LinkStatus
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/payment/status/{uniqueID} [get]
func (h *CheckoutHandler) PaymentStatus(c echo.Context) error {
	status, err := h.links.GetStatus(c.Request().Context(), c.Param("uniqueID"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, status)
}

// gatewayError renders domain and gateway failures. Provider diagnostic
// detail is only exposed in sandbox mode.
func (h *CheckoutHandler) gatewayError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	body := echo.Map{
		"error": httpErr.Message,
		"code":  httpErr.Code,
	}
	var gw *errors.GatewayError
	if stderrors.As(err, &gw) {
		if h.sandbox {
			body["details"] = gw.Detail
		} else {
			body["details"] = "Check server logs for details"
		}
	}
	return echo.NewHTTPError(httpErr.StatusCode, body)
}
