package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quickbasket/storefront/services"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// GetProducts lists the catalog with optional category filter and paging.
func (pc *ProductController) GetProducts(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	category := c.Query("category")

	products, total, err := pc.products.GetProducts(c, category, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": paginationMeta(int(page), int(limit), total),
	})
}

// GetProduct returns a single product by id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.products.GetProduct(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
