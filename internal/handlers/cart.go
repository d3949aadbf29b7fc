package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sagesilk/internal/models"
	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	cartSessionName   = "sagesilk_cart"
	cartSessionKey    = "cart_session"
	cartItemsKey      = "items"
	cartSessionMaxAge = 7 * 24 * 3600
)

// cartSession loads the visitor's cart session and applies consistent cookie options.
func (h *Handler) cartSession(c *gin.Context) {
	session, err := h.store.Get(c.Request, cartSessionName)
	if err != nil {
		// A cookie signed with an old secret decodes to a fresh session.
		h.log.Debugw("cart_session_reset", "err", err)
	}
	h.applySessionOptions(session)
	c.Set(cartSessionKey, session)
	c.Next()
}

func (h *Handler) applySessionOptions(session *sessions.Session) {
	if session.Options == nil {
		session.Options = &sessions.Options{}
	}
	session.Options.Path = "/"
	session.Options.MaxAge = cartSessionMaxAge
	session.Options.HttpOnly = true
	session.Options.Secure = h.secure
	session.Options.SameSite = http.SameSiteLaxMode
}

func sessionFrom(c *gin.Context) *sessions.Session {
	v, _ := c.Get(cartSessionKey)
	s, _ := v.(*sessions.Session)
	return s
}

// cartItems decodes the item list. A corrupt value reads as an empty cart.
func cartItems(s *sessions.Session) []models.CartItem {
	raw, _ := s.Values[cartItemsKey].(string)
	if raw == "" {
		return nil
	}
	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

func (h *Handler) saveCart(c *gin.Context, s *sessions.Session, items []models.CartItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.Values[cartItemsKey] = string(b)
	return s.Save(c.Request, c.Writer)
}

func formInt64(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(c.PostForm(key), 10, 64)
	return v, err == nil
}

func (h *Handler) addToCart(c *gin.Context) {
	productID, ok := formInt64(c, "productId")
	if !ok {
		h.renderError(c, http.StatusBadRequest, "Invalid product.")
		return
	}
	quantity := 1
	if q := c.PostForm("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			h.renderError(c, http.StatusBadRequest, "Quantity must be a number.")
			return
		}
		quantity = n
	}

	s := sessionFrom(c)
	items, err := h.services.Add(c.Request.Context(), cartItems(s), productID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			h.renderError(c, http.StatusNotFound, "That product does not exist.")
		case service.KindOf(err) == service.KindValidation:
			h.renderError(c, http.StatusBadRequest, service.MessagesOf(err, "")[0])
		default:
			h.log.Errorw("cart_add_failed", "product_id", productID, "err", err)
			h.renderError(c, http.StatusInternalServerError, "Could not update your cart.")
		}
		return
	}

	if err := h.saveCart(c, s, items); err != nil {
		h.log.Errorw("cart_save_failed", "err", err)
		h.renderError(c, http.StatusInternalServerError, "Could not update your cart.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/mycart")
}

func (h *Handler) removeFromCart(c *gin.Context) {
	productID, ok := formInt64(c, "productId")
	if !ok {
		h.renderError(c, http.StatusBadRequest, "Invalid product.")
		return
	}
	s := sessionFrom(c)
	if err := h.saveCart(c, s, h.services.Remove(cartItems(s), productID)); err != nil {
		h.log.Errorw("cart_save_failed", "err", err)
		h.renderError(c, http.StatusInternalServerError, "Could not update your cart.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/mycart")
}

func (h *Handler) viewCart(c *gin.Context) {
	summary := h.services.Summarize(cartItems(sessionFrom(c)))
	h.render(c, http.StatusOK, "cart", gin.H{"Title": "My cart", "Cart": summary})
}

func (h *Handler) checkout(c *gin.Context) {
	summary := h.services.Summarize(cartItems(sessionFrom(c)))
	h.render(c, http.StatusOK, "cart", gin.H{"Title": "Checkout", "Cart": summary, "Checkout": true})
}
