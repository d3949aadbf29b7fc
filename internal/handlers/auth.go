package handlers

import (
	"net/http"

	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) signUpForm(c *gin.Context) {
	h.render(c, http.StatusOK, "signup", gin.H{"Title": "Sign up"})
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login", gin.H{"Title": "Log in"})
}

// signUp creates the account and starts a session. Validation and conflict
// messages are shown on the re-rendered form with status 200.
func (h *Handler) signUp(c *gin.Context) {
	in := service.SignUpInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	sess, err := h.services.SignUp(c.Request.Context(), in)
	if err != nil {
		code := http.StatusOK
		switch service.KindOf(err) {
		case service.KindValidation, service.KindConflict:
			h.log.Infow("auth_sign_up_rejected", "username", service.LoggableUsername(in.Username), "kind", service.KindOf(err).String())
		default:
			code = http.StatusInternalServerError
			h.log.Errorw("auth_sign_up_failed", "username", service.LoggableUsername(in.Username), "err", err)
		}
		h.render(c, code, "signup", gin.H{
			"Title":    "Sign up",
			"Errors":   service.MessagesOf(err, service.MsgSignupFailed),
			"Username": in.Username,
			"Email":    in.Email,
		})
		return
	}

	h.cookies.Attach(c, sess.Token)
	c.Redirect(http.StatusSeeOther, "/welcome")
}

// login never tells the visitor which of username or password was wrong.
func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")

	sess, err := h.services.Login(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		code := http.StatusOK
		if service.KindOf(err) == service.KindAuthentication {
			h.log.Infow("auth_login_failed", "username", service.LoggableUsername(username))
		} else {
			code = http.StatusInternalServerError
			h.log.Errorw("auth_login_error", "username", service.LoggableUsername(username), "err", err)
		}
		h.render(c, code, "login", gin.H{
			"Title":    "Log in",
			"Errors":   service.MessagesOf(err, service.MsgLoginFailed),
			"Username": username,
		})
		return
	}

	h.cookies.Attach(c, sess.Token)
	c.Redirect(http.StatusSeeOther, "/welcome")
}

func (h *Handler) logout(c *gin.Context) {
	id := identityFrom(c)
	if err := h.services.Logout(c.Request.Context(), id); err != nil {
		h.log.Errorw("auth_logout_failed", "username", id.Username, "err", err)
	}
	h.cookies.Clear(c)
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) welcome(c *gin.Context) {
	h.render(c, http.StatusOK, "welcome", gin.H{"Title": "Welcome"})
}
