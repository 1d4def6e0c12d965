package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickbasket/storefront/middleware"
	"github.com/quickbasket/storefront/services"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Replace   bool   `json:"replace"`
}

type updateItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// GetCart returns the current session cart with its computed summary.
func (cc *CartController) GetCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	cart, err := cc.cart.GetCart(c, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem adds a product to the cart, incrementing the line if it already
// exists. With replace=true the quantity is set instead of added.
func (cc *CartController) AddItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Quantity == 0 && !req.Replace {
		req.Quantity = 1
	}

	if req.Replace {
		updated, uerr := cc.cart.UpdateQuantity(c, sessionID, req.ProductID, req.VariantID, req.Quantity)
		if errors.Is(uerr, services.ErrItemNotFound) && req.Quantity > 0 {
			updated, uerr = cc.cart.AddToCart(c, sessionID, req.ProductID, req.VariantID, req.Quantity)
		}
		if uerr != nil {
			respondError(c, uerr)
			return
		}
		c.JSON(http.StatusOK, updated)
		return
	}

	updated, err := cc.cart.AddToCart(c, sessionID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateItem sets a line's quantity; zero or less removes the line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	productID := c.Param("product_id")

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := cc.cart.UpdateQuantity(c, sessionID, productID, req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem deletes a line; removing an absent line still returns the cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	productID := c.Param("product_id")
	variantID := c.Query("variant_id")

	cart, err := cc.cart.RemoveFromCart(c, sessionID, productID, variantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart empties the session cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if err := cc.cart.ClearCart(c, sessionID); err != nil {
		respondError(c, err)
		return
	}
	cart, err := cc.cart.GetCart(c, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
