package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwiyanpr/product-catalog-api/internal/application"
	"github.com/dwiyanpr/product-catalog-api/internal/container"
	handlers "github.com/dwiyanpr/product-catalog-api/internal/interface/http"
	"github.com/dwiyanpr/product-catalog-api/internal/interface/middleware"
)

// ProductModule wires the ownership-scoped product CRUD. Everything here
// sits behind the bearer auth middleware. Update is registered on PUT and
// POST so form clients using a method override keep working.
type ProductModule struct {
	Handler *handlers.ProductHandler
	Auth    *application.AuthService
}

func NewProductModule(h *handlers.ProductHandler, auth *application.AuthService) *ProductModule {
	return &ProductModule{Handler: h, Auth: auth}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/products", m.Handler.List)
		auth.POST("/products", m.Handler.Create)
		auth.GET("/products/search", m.Handler.Search)
		auth.GET("/products/:id", m.Handler.Show)
		auth.PUT("/products/:id", m.Handler.Update)
		auth.POST("/products/:id", m.Handler.Update)
		auth.DELETE("/products/:id", m.Handler.Destroy)
	}
}
