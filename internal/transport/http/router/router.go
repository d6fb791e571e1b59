package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shopsync/internal/core/auth"
	"shopsync/internal/transport/http/handler"
	mdw "shopsync/internal/transport/http/middleware"
)

type Handlers struct {
	Auth    *handler.Auth
	Catalog *handler.Catalog
	Cart    *handler.Cart
	Orders  *handler.Orders
	Admin   *handler.Admin
}

func New(l *zap.Logger, jwter *auth.JWTer, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(
		// RecoveryWithZap backstops panics in the middleware chain itself;
		// SimpleRecovery handles handler panics with the envelope.
		ginzap.RecoveryWithZap(l, true),
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/register", h.Auth.Register)

	api.GET("/products", h.Catalog.List)
	api.GET("/products/:id", h.Catalog.Get)
	api.GET("/categories", h.Catalog.Categories)

	authUser := api.Group("")
	authUser.Use(mdw.AuthJWT(jwter, ""))
	{
		authUser.GET("/me", h.Auth.Me)
		authUser.PUT("/me", h.Auth.UpdateMe)

		authUser.GET("/cart", h.Cart.List)
		authUser.POST("/cart/items", h.Cart.Add)
		authUser.PUT("/cart/items/:productId/:size", h.Cart.SetQuantity)
		authUser.DELETE("/cart/items/:productId/:size", h.Cart.Remove)
		authUser.DELETE("/cart", h.Cart.Clear)

		authUser.POST("/orders", h.Orders.Checkout)
		authUser.GET("/orders", h.Orders.History)
		authUser.GET("/orders/:id", h.Orders.Get)
		authUser.POST("/orders/:id/cancel", h.Orders.Cancel)
	}

	admin := api.Group("/admin")
	admin.Use(mdw.AuthJWT(jwter, "admin"))
	{
		admin.POST("/products", h.Admin.CreateProduct)
		admin.PUT("/products/:id", h.Admin.UpdateProduct)
		admin.DELETE("/products/:id", h.Admin.DeleteProduct)
		admin.POST("/products/import", h.Admin.ImportProducts)

		admin.GET("/orders", h.Admin.ListOrders)
		admin.PUT("/orders/:id/status", h.Admin.UpdateOrderStatus)
		admin.DELETE("/orders/:id", h.Admin.DeleteOrder)
	}

	return r
}
