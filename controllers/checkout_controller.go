package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickbasket/storefront/middleware"
	"github.com/quickbasket/storefront/services"
)

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// StartCheckout opens a hosted payment session for the current cart and
// returns the redirect URL. The request body is optional.
func (cc *CheckoutController) StartCheckout(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		respondError(c, services.ErrNoCartSession)
		return
	}

	var opts services.CheckoutOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}

	checkout, err := cc.checkout.StartCheckout(c, sessionID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkout)
}
