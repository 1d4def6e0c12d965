package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickbasket/storefront/controllers"
	"github.com/quickbasket/storefront/middleware"
)

// RegisterRoutes wires the HTTP surface. The webhook endpoint stays outside
// the session middleware: the caller is Stripe, not a browser.
func RegisterRoutes(
	r *gin.Engine,
	products *controllers.ProductController,
	cart *controllers.CartController,
	checkout *controllers.CheckoutController,
	webhook *controllers.WebhookController,
	orders *controllers.OrderController,
	adminAPIKey string,
	rateLimit gin.HandlerFunc,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Stripe calls the webhook; it is neither rate limited nor session scoped.
	r.POST("/stripe/webhook", webhook.StripeWebhook)

	catalog := r.Group("/", rateLimit)
	{
		catalog.GET("/products", products.GetProducts)
		catalog.GET("/products/:id", products.GetProduct)
	}

	session := r.Group("/", rateLimit, middleware.CartSession())
	{
		session.GET("/cart", cart.GetCart)
		session.POST("/cart/items", cart.AddItem)
		session.PUT("/cart/items/:product_id", cart.UpdateItem)
		session.DELETE("/cart/items/:product_id", cart.RemoveItem)
		session.DELETE("/cart", cart.ClearCart)

		session.POST("/checkout", checkout.StartCheckout)
	}

	admin := r.Group("/admin", middleware.AdminKey(adminAPIKey))
	{
		admin.GET("/orders", orders.GetOrders)
		admin.GET("/orders/:id", orders.GetOrder)
	}
}
