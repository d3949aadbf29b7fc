package handlers

import (
	"errors"
	"net/http"

	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
)

type categoryLink struct {
	Slug string
	Name string
}

// render executes a page template, adding the fields every page needs.
func (h *Handler) render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Sage & Silk"
	}
	data["User"] = identityFrom(c).Username
	c.HTML(code, name, data)
}

func (h *Handler) renderError(c *gin.Context, code int, msg string) {
	h.render(c, code, "error", gin.H{"Title": http.StatusText(code), "Message": msg})
}

// @Summary  Health check
// @Tags     meta
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) index(c *gin.Context) {
	links := make([]categoryLink, 0, len(service.Categories))
	for _, slug := range categorySlugs() {
		links = append(links, categoryLink{Slug: slug, Name: service.Categories[slug]})
	}
	h.render(c, http.StatusOK, "index", gin.H{"Title": "Home", "Categories": links})
}

func (h *Handler) contact(c *gin.Context) {
	h.render(c, http.StatusOK, "contact", gin.H{"Title": "Contact"})
}

func (h *Handler) wishlist(c *gin.Context) {
	h.render(c, http.StatusOK, "wishlist", gin.H{"Title": "Wishlist", "ProductID": c.Param("id")})
}

func (h *Handler) tracking(c *gin.Context) {
	trackingID := c.Query("trackingId")
	data := gin.H{"Title": "Order tracking", "TrackingID": trackingID}
	if trackingID == "" {
		h.render(c, http.StatusOK, "tracking", data)
		return
	}

	sh, err := h.services.Track(trackingID)
	switch {
	case err == nil:
		data["Shipment"] = &sh
		h.render(c, http.StatusOK, "tracking", data)
	case errors.Is(err, service.ErrShipmentNotFound):
		h.render(c, http.StatusNotFound, "tracking", data)
	default:
		h.log.Errorw("tracking_lookup_failed", "tracking_id", trackingID, "err", err)
		h.renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
