package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sagesilk/internal/models"
	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgProductAdded      = "Product added successfully"
	errAddProduct        = "Failed to add product"
	errFetchProducts     = "Failed to fetch products"
	errProductNotFound   = "product not found"
	errInvalidProductID  = "invalid product id"
	errInvalidBodyPrefix = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

func (h *Handler) productsLanding(c *gin.Context) {
	products, err := h.services.Catalog.List(c.Request.Context())
	if err != nil {
		h.log.Errorw("products_list_failed", "err", err)
		h.renderError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.render(c, http.StatusOK, "products", gin.H{"Title": "All products", "Products": products})
}

func (h *Handler) listCategory(slug string) gin.HandlerFunc {
	title := service.Categories[slug]
	return func(c *gin.Context) {
		products, err := h.services.ListByCategory(c.Request.Context(), slug)
		if err != nil {
			h.log.Errorw("category_list_failed", "category", slug, "err", err)
			h.renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		h.render(c, http.StatusOK, "products", gin.H{"Title": title, "Products": products})
	}
}

func (h *Handler) listSubcategory(slug string) gin.HandlerFunc {
	category := service.Categories[slug]
	return func(c *gin.Context) {
		sub := c.Param("subcategory")
		products, err := h.services.ListBySubcategory(c.Request.Context(), slug, sub)
		if err != nil {
			h.log.Errorw("subcategory_list_failed", "category", slug, "subcategory", sub, "err", err)
			h.renderError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		h.render(c, http.StatusOK, "products", gin.H{
			"Title":    category + " / " + service.SubcategoryName(sub),
			"Products": products,
		})
	}
}

// @Summary      List products
// @Description  All products with their category, subcategory and image URLs.
// @Tags         products
// @Produce      json
// @Success      200  {array}   models.Product
// @Failure      500  {object}  map[string]string
// @Router       /api/products [get]
func (h *Handler) apiListProducts(c *gin.Context) {
	products, err := h.services.Catalog.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errFetchProducts, "api_products_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// @Summary   Get product
// @Tags      products
// @Produce   json
// @Param     id   path      int  true  "Product ID"
// @Success   200  {object}  models.Product
// @Failure   400  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /api/products/{id} [get]
func (h *Handler) apiGetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidProductID})
		return
	}

	p, err := h.services.Catalog.Get(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errProductNotFound})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errFetchProducts, "api_product_get_failed", err, "id", id)
	}
}

// @Summary      Add product
// @Description  Inserts a product and its images in one transaction. Requires a session cookie.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      models.NewProduct  true  "Product"
// @Success      201   {object}  map[string]interface{}  "message, productId"
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/products [post]
func (h *Handler) apiCreateProduct(c *gin.Context) {
	var in models.NewProduct
	if err := c.ShouldBindJSON(&in); err != nil {
		h.log.Infow("api_product_bad_request_body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPrefix + err.Error()})
		return
	}

	id, err := h.services.Catalog.Create(c.Request.Context(), in)
	if err != nil {
		if service.KindOf(err) == service.KindValidation {
			c.JSON(http.StatusBadRequest, gin.H{"errors": service.MessagesOf(err, errAddProduct)})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errAddProduct, "api_product_create_failed", err,
			"name", in.Name, "user", identityFrom(c).Username)
		return
	}

	h.log.Infow("product_created", "id", id, "user", identityFrom(c).Username)
	c.JSON(http.StatusCreated, gin.H{"message": msgProductAdded, "productId": id})
}
