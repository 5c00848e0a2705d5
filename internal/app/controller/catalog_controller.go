package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/app/service"
	"github.com/ikkim/shopgenie-backend/internal/catalog"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	apperrors "github.com/ikkim/shopgenie-backend/internal/errors"
	"github.com/ikkim/shopgenie-backend/internal/middleware"
)

const (
	defaultRelatedLimit  = 4
	defaultFeaturedLimit = 4
)

type CatalogController struct {
	engine   *engine.Engine
	catalog  *catalog.Catalog
	insights service.InsightLoader
}

func NewCatalogController(e *engine.Engine, insights service.InsightLoader) *CatalogController {
	return &CatalogController{
		engine:   e,
		catalog:  e.Catalog(),
		insights: insights,
	}
}

// ListProducts searches the catalog
// GET /api/v1/products?q=&category=&sort=newest|low|high
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	query := catalog.Query{
		Text:     c.Query("q"),
		Category: c.DefaultQuery("category", catalog.AllCategories),
		Sort:     catalog.SortOrder(c.DefaultQuery("sort", string(catalog.SortNewest))),
	}

	products := ctrl.catalog.Search(query)

	middleware.GetLoggerFromContext(c).Debug("Products searched", map[string]interface{}{
		"q":        query.Text,
		"category": query.Category,
		"count":    len(products),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// FeaturedProducts returns the first products of a category
// GET /api/v1/products/featured?category=&limit=
func (ctrl *CatalogController) FeaturedProducts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultFeaturedLimit)))
	if err != nil || limit < 1 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit must be a positive number")
		return
	}

	products := ctrl.catalog.Featured(c.DefaultQuery("category", catalog.AllCategories), limit)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns the product page view and records it in history
// GET /api/v1/products/:id
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	view, err := ctrl.engine.ViewProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RelatedProducts returns other products of the same category
// GET /api/v1/products/:id/related
func (ctrl *CatalogController) RelatedProducts(c *gin.Context) {
	product, ok := ctrl.catalog.FindByID(c.Param("id"))
	if !ok {
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		return
	}

	related := ctrl.catalog.Related(product, defaultRelatedLimit)
	c.JSON(http.StatusOK, gin.H{
		"products": related,
		"count":    len(related),
	})
}

// GetInsight asks the advice service for a short product pitch. A lookup
// overtaken by a newer one answers 409 so the client can drop it.
// GET /api/v1/products/:id/insight
func (ctrl *CatalogController) GetInsight(c *gin.Context) {
	product, ok := ctrl.catalog.FindByID(c.Param("id"))
	if !ok {
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		return
	}

	insight, current := ctrl.insights.Load(c.Request.Context(), product)
	if !current {
		apperrors.Conflict(c, apperrors.ResourceConflict, "A newer insight request replaced this one")
		return
	}
	c.JSON(http.StatusOK, insight)
}
