package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopcore/internal/models"
	"shopcore/internal/services"
)

type ProductHandler struct {
	catalog services.CatalogService
}

func NewProductHandler(catalog services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// @Summary      Browse products
// @Description  Public catalog listing with category, search and price filters
// @Tags         Catalog
// @Produce      json
// @Param        category   query     string  false  "Category slug"
// @Param        search     query     string  false  "Name or SKU search"
// @Param        price_min  query     number  false  "Minimum price"
// @Param        price_max  query     number  false  "Maximum price"
// @Success      200        {array}   models.Product
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	filter := models.ProductFilter{
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
		ActiveOnly:   true,
		Limit:        limit,
		Offset:       offset,
	}
	if v := c.Query("price_min"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMin = &f
		}
	}
	if v := c.Query("price_max"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMax = &f
		}
	}

	products, err := h.catalog.ListProducts(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetBySlug(c *gin.Context) {
	p, err := h.catalog.GetProductBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Name == "" || p.SKU == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and sku are required"})
		return
	}
	if err := h.catalog.CreateProduct(&p); err != nil {
		if errors.Is(err, services.ErrSlugTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = c.Param("id")
	if err := h.catalog.UpdateProduct(&p); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// variants

func (h *ProductHandler) CreateVariant(c *gin.Context) {
	var v models.ProductVariant
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v.ProductID = c.Param("id")
	if err := h.catalog.CreateVariant(&v); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	var v models.ProductVariant
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v.ID = c.Param("variantID")
	if err := h.catalog.UpdateVariant(&v); err != nil {
		if errors.Is(err, services.ErrVariantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *ProductHandler) DeleteVariant(c *gin.Context) {
	if err := h.catalog.DeleteVariant(c.Param("variantID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "variant deleted"})
}
