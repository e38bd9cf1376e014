package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"linkpay/internal/errors"
	"linkpay/internal/service"
)

// LinkHandler serves the seller-facing pages: landing, creation, edit,
// delete, and the buyer-facing payment and confirmation pages.
type LinkHandler struct {
	links          service.LinkService
	store          sessions.Store
	paypalClientID string
}

// NewLinkHandler creates a new link page handler.
func NewLinkHandler(links service.LinkService, store sessions.Store, paypalClientID string) *LinkHandler {
	return &LinkHandler{links: links, store: store, paypalClientID: paypalClientID}
}

// CreateLinkRequest represents the link creation form.
type CreateLinkRequest struct {
	ProductName    string `form:"product_name" validate:"required"`
	Price          string `form:"price" validate:"required"`
	DeliveryCost   string `form:"delivery_cost"`
	ClientName     string `form:"client_name"`
	DeliveryMethod string `form:"delivery_method" validate:"required"`
}

// EditLinkRequest represents the link edit form. Delivery cost is not
// editable and the paid fields are never form-driven.
type EditLinkRequest struct {
	ProductName    string `form:"product_name" validate:"required"`
	Price          string `form:"price" validate:"required"`
	ClientName     string `form:"client_name" validate:"required"`
	DeliveryMethod string `form:"delivery_method" validate:"required"`
}

// Index renders the landing page. Expired links are swept first; a
// failed sweep is logged and does not block the render.
func (h *LinkHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	deleted, err := h.links.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("expiry sweep failed: %v", err)
	} else if deleted > 0 {
		log.Printf("expiry sweep removed %d payment links", deleted)
	}

	recent, err := h.links.ListRecent(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list links")
	}

	return c.Render(http.StatusOK, "index.html", echo.Map{
		"RecentLinks": recent,
		"Flashes":     takeFlashes(h.store, c),
		"CSRF":        c.Get("csrf"),
	})
}

// CreateLinkForm renders the creation form.
func (h *LinkHandler) CreateLinkForm(c echo.Context) error {
	return c.Render(http.StatusOK, "create_link.html", echo.Map{
		"CSRF": c.Get("csrf"),
	})
}

// CreateLink godoc
// @Summary Create a payment link
// @Tags links
// @Accept x-www-form-urlencoded
// @Produce html
// @Param product_name formData string true "Product name"
// @Param price formData string true "Price"
// @Param delivery_cost formData string false "Delivery cost"
// @Param client_name formData string false "Client name"
// @Param delivery_method formData string true "Delivery method"
// @Success 200
// @Failure 400 {object} errors.ErrorResponse
// @Router /create_link [post]
func (h *LinkHandler) CreateLink(c echo.Context) error {
	var req CreateLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "create_link.html", echo.Map{
			"Error": "Tous les champs obligatoires doivent être remplis.",
			"CSRF":  c.Get("csrf"),
		})
	}

	link, err := h.links.CreateLink(c.Request().Context(), service.CreateLinkInput{
		ProductName:    req.ProductName,
		Price:          req.Price,
		DeliveryCost:   req.DeliveryCost,
		ClientName:     req.ClientName,
		DeliveryMethod: req.DeliveryMethod,
	})
	if err != nil {
		if err == errors.ErrInvalidAmount {
			return c.Render(http.StatusBadRequest, "create_link.html", echo.Map{
				"Error": "Le prix et les frais de livraison doivent être des montants valides.",
				"CSRF":  c.Get("csrf"),
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create link")
	}

	return c.Render(http.StatusOK, "link_created.html", echo.Map{
		"PaymentURL": h.links.PaymentURL(link.UniqueID),
		"Link":       link,
	})
}

// PaymentPage renders the buyer-facing payment page, redirecting paid
// links to the confirmation view and expired links to the landing page.
func (h *LinkHandler) PaymentPage(c echo.Context) error {
	uniqueID := c.Param("uniqueID")
	link, err := h.links.GetPaymentPage(c.Request().Context(), uniqueID, time.Now().UTC())
	if err != nil {
		if err == errors.ErrLinkExpired {
			addFlash(h.store, c, "error", "Ce lien de paiement a expiré. Veuillez en créer un nouveau.")
			return c.Redirect(http.StatusFound, "/")
		}
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message)
	}
	if link.IsPaid {
		return c.Redirect(http.StatusFound, "/payment/success/"+uniqueID)
	}

	return c.Render(http.StatusOK, "payment_page.html", echo.Map{
		"ProductName":    link.ProductName,
		"Price":          link.Price.StringFixed(2),
		"DeliveryCost":   link.DeliveryCost.StringFixed(2),
		"DeliveryMethod": link.DeliveryMethod,
		"TotalAmount":    link.TotalAmount().StringFixed(2),
		"UniqueID":       uniqueID,
		"PayPalClientID": h.paypalClientID,
	})
}

// PaymentSuccess renders the confirmation page for a link.
func (h *LinkHandler) PaymentSuccess(c echo.Context) error {
	link, err := h.links.GetLink(c.Request().Context(), c.Param("uniqueID"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message)
	}
	return c.Render(http.StatusOK, "payment_success.html", echo.Map{
		"Link":        link,
		"TotalAmount": link.TotalAmount().StringFixed(2),
	})
}

// EditLinkForm renders the edit form pre-filled with the current values.
func (h *LinkHandler) EditLinkForm(c echo.Context) error {
	link, err := h.links.GetLink(c.Request().Context(), c.Param("uniqueID"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message)
	}
	return c.Render(http.StatusOK, "edit_link.html", echo.Map{
		"Link": link,
		"CSRF": c.Get("csrf"),
	})
}

// EditLink applies the edit form to the four editable fields.
func (h *LinkHandler) EditLink(c echo.Context) error {
	var req EditLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, err := h.links.EditLink(c.Request().Context(), c.Param("uniqueID"), service.EditLinkInput{
		ProductName:    req.ProductName,
		Price:          req.Price,
		ClientName:     req.ClientName,
		DeliveryMethod: req.DeliveryMethod,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message)
	}

	addFlash(h.store, c, "success", "Lien de paiement mis à jour avec succès!")
	return c.Redirect(http.StatusFound, "/")
}

// DeleteLink removes a link and returns to the landing page.
func (h *LinkHandler) DeleteLink(c echo.Context) error {
	if err := h.links.DeleteLink(c.Request().Context(), c.Param("uniqueID")); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message)
	}
	addFlash(h.store, c, "success", "Lien de paiement supprimé avec succès!")
	return c.Redirect(http.StatusFound, "/")
}
