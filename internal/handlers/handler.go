package handlers

import (
	"embed"
	"html/template"
	"sort"

	"sagesilk/internal/logger"
	"sagesilk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Options configures cookies and the cart session store.
type Options struct {
	SessionSecret string
	SecureCookies bool
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	cookies  SessionCookie
	store    sessions.Store
	secure   bool
}

// NewHandler constructs a new HTTP handler with dependencies. A nil log discards output.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		services: services,
		log:      log,
		cookies:  newSessionCookie(opts.SecureCookies),
		store:    sessions.NewCookieStore([]byte(opts.SessionSecret)),
		secure:   opts.SecureCookies,
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger, h.identityMiddleware)
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.tmpl")))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerPageRoutes(router)
	h.registerCatalogRoutes(router)
	h.registerCartRoutes(router)
	h.registerAPIRoutes(router)

	router.GET("/ws/chat", h.chatConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.GET("/signup", h.signUpForm)
	r.POST("/signup", h.signUp)
	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)
	r.GET("/welcome", h.requireLogin, h.welcome)
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/contact", h.contact)
	r.GET("/wishlist", h.wishlist)
	r.GET("/wishlist/:id", h.wishlist)
	r.GET("/tracking", h.tracking)
}

func (h *Handler) registerCatalogRoutes(r *gin.Engine) {
	r.GET("/products", h.productsLanding)
	for _, slug := range categorySlugs() {
		r.GET("/"+slug, h.listCategory(slug))
		r.GET("/"+slug+"/:subcategory", h.listSubcategory(slug))
	}
}

func (h *Handler) registerCartRoutes(r *gin.Engine) {
	cart := r.Group("/", h.cartSession)
	{
		cart.POST("/add-to-cart", h.addToCart)
		cart.GET("/mycart", h.viewCart)
		cart.GET("/checkout", h.checkout)
		cart.POST("/cart/remove", h.removeFromCart)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	products := r.Group("/api/products")
	{
		products.GET("", h.apiListProducts)
		products.GET("/:id", h.apiGetProduct)
		products.POST("", h.requireAPIAuth, h.apiCreateProduct)
	}

	v1 := r.Group("/api/v1", h.requireAPIAuth)
	{
		v1.GET("/audit", h.getAudit)
	}
}

func categorySlugs() []string {
	slugs := make([]string, 0, len(service.Categories))
	for slug := range service.Categories {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
