package router

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"linkpay/internal/config"
	"linkpay/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	linkHandler *handler.LinkHandler,
	checkoutHandler *handler.CheckoutHandler,
	healthHandler *handler.HealthHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	// Form posts carry a CSRF token; the checkout widget endpoints and
	// the read-only JSON surface are exempt, mirroring the widget's
	// inability to carry a form token.
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup: "form:csrf_token",
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/create-paypal-order" ||
				p == "/capture-paypal-order" ||
				strings.HasPrefix(p, "/api/") ||
				strings.HasPrefix(p, "/swagger")
		},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Seller pages
	e.GET("/", linkHandler.Index)
	e.GET("/create_link", linkHandler.CreateLinkForm)
	e.POST("/create_link", linkHandler.CreateLink)
	e.GET("/payment_link/edit/:uniqueID", linkHandler.EditLinkForm)
	e.POST("/payment_link/edit/:uniqueID", linkHandler.EditLink)
	e.POST("/payment_link/delete/:uniqueID", linkHandler.DeleteLink)

	// Buyer pages
	e.GET("/payment/success/:uniqueID", linkHandler.PaymentSuccess)
	e.GET("/payment/:uniqueID", linkHandler.PaymentPage)

	// Checkout widget endpoints
	e.POST("/create-paypal-order", checkoutHandler.CreateOrder)
	e.POST("/capture-paypal-order", checkoutHandler.CaptureOrder)

	// Status API
	e.GET("/api/payment/status/:uniqueID", checkoutHandler.PaymentStatus)

	// Diagnostics
	e.GET("/health/paypal", healthHandler.PayPalHealth)
	e.GET("/test-paypal-config", healthHandler.TestPayPalConfig)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
