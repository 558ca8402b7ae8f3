package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gorent/internal/middleware"
	"gorent/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for the payment flow.
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// RegisterRoutes registers the authenticated payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/:orderID/initiate", h.HandleInitiate)
}

// RegisterCallbackRoutes registers the routes the gateway itself calls; these
// carry no session and must stay outside the auth middleware. Every state
// transition still goes through the encrypted callback — the landing pages
// only render, they never touch orders. A gateway-side cancel arrives as an
// Aborted callback on the same URL.
func (h *PaymentHandler) RegisterCallbackRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/callback", h.HandleCallback)
	paymentRoutes.Get("/success/:orderID", h.HandleSuccess)
	paymentRoutes.Get("/failure/:orderID", h.HandleFailure)
}

// HandleInitiate builds the encrypted gateway request for one of the user's
// pending orders and returns an auto-submitting HTML form that redirects the
// browser to the hosted payment page.
func (h *PaymentHandler) HandleInitiate(c *fiber.Ctx) error {
	form, err := h.paymentService.InitiatePayment(middleware.UserID(c), c.Params("orderID"))
	if err != nil {
		log.Printf("Error initiating payment: %v", err)
		switch {
		case errors.Is(err, services.ErrNotOrderOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not authorized for this order",
			})
		case errors.Is(err, services.ErrPaymentNotPending):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Payment rejected",
				"error":   err.Error(),
			})
		case strings.Contains(err.Error(), "not found"):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not initiate payment",
			"error":   err.Error(),
		})
	}

	if c.Accepts("text/html", "application/json") == "application/json" {
		return c.JSON(form)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(redirectForm(form))
}

// HandleCallback receives the gateway's encrypted callback, applies the order
// transition and redirects the browser to the matching result page. A payload
// that fails decryption never marks anything paid.
func (h *PaymentHandler) HandleCallback(c *fiber.Ctx) error {
	encResp := c.FormValue("encResp")
	if encResp == "" {
		encResp = c.FormValue("encResponse")
	}

	result, err := h.paymentService.HandleCallback(encResp)
	if err != nil {
		log.Printf("Payment callback rejected: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Payment failed",
		})
	}

	if result.Duplicate {
		log.Printf("Duplicate payment callback for order %s ignored", result.OrderID)
	}
	if result.Paid {
		return c.Redirect(fmt.Sprintf("/api/v1/payments/success/%s", result.OrderID), fiber.StatusFound)
	}
	return c.Redirect(fmt.Sprintf("/api/v1/payments/failure/%s", result.OrderID), fiber.StatusFound)
}

// HandleSuccess is the landing page after a settled payment.
func (h *PaymentHandler) HandleSuccess(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":  "Payment successful. Your booking is confirmed.",
		"order_id": c.Params("orderID"),
	})
}

// HandleFailure is the landing page after a failed payment.
func (h *PaymentHandler) HandleFailure(c *fiber.Ctx) error {
	return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
		"message":  "Payment failed. Please create a new booking to try again.",
		"order_id": c.Params("orderID"),
	})
}

// redirectForm renders the auto-submitting form that hands the browser over
// to the hosted payment page.
func redirectForm(form *services.PaymentForm) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Redirecting to payment gateway...</title></head>
<body>
<form id="paymentForm" method="post" action="%s">
<input type="hidden" name="encRequest" value="%s"/>
<input type="hidden" name="access_code" value="%s"/>
<input type="hidden" name="merchant_id" value="%s"/>
</form>
<script>document.getElementById('paymentForm').submit();</script>
<p>Redirecting to payment gateway...</p>
</body>
</html>`, form.PaymentURL, form.EncRequest, form.AccessCode, form.MerchantID)
}
