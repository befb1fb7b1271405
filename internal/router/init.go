package router

import (
	"github.com/dwiyanpr/product-catalog-api/internal/application"
	"github.com/dwiyanpr/product-catalog-api/internal/container"
	"github.com/dwiyanpr/product-catalog-api/internal/infrastructure/gcs"
	pginfra "github.com/dwiyanpr/product-catalog-api/internal/infrastructure/postgres"
	handlers "github.com/dwiyanpr/product-catalog-api/internal/interface/http"
	"github.com/dwiyanpr/product-catalog-api/internal/router/modules"
)

func buildAuthService() *application.AuthService {
	cfg := container.GetConfig()
	return application.NewAuthService(
		pginfra.NewUserRepository(container.GetPGPool()),
		pginfra.NewTokenRepository(container.GetPGPool()),
		container.GetRedis(),
		cfg.TokenCacheTTL,
		container.GetLogger(),
		container.GetRabbitPub(),
		cfg.MailSendEnabled,
	)
}

func buildProductService() *application.ProductService {
	cfg := container.GetConfig()
	return application.NewProductService(
		pginfra.NewProductRepository(container.GetPGPool()),
		gcs.NewStore(container.GetGCS(), cfg.GCSBucket),
		container.GetLogger(),
		container.GetES(),
		cfg.ESProductsIndex,
	)
}

// InitModules builds services from container singletons and registers all
// feature modules. Called once during startup.
func InitModules(r *Registry) {
	authSvc := buildAuthService()
	productSvc := buildProductService()
	logger := container.GetLogger()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger), authSvc))
	r.Add(modules.NewProductModule(handlers.NewProductHandler(productSvc, logger), authSvc))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(container.GetPGPool())))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
