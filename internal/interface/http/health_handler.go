package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwiyanpr/product-catalog-api/internal/infrastructure/postgres"
	"github.com/dwiyanpr/product-catalog-api/pkg/response"
)

type HealthHandler struct {
	Pool *pgxpool.Pool
}

func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{Pool: pool}
}

// Healthz GET /api/healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	if err := postgres.Ping(c.Request.Context(), h.Pool); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, "database unreachable", nil)
		return
	}
	response.OK(c, http.StatusOK, "ok", nil)
}
