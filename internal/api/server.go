// Package api is the admin HTTP surface: health, Prometheus metrics, and a
// read-only portfolio endpoint for operators.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cryptovision/internal/app/port"
	"cryptovision/internal/config"
	"cryptovision/internal/domain/entity"
)

// PortfolioResponse is the JSON shape of the admin portfolio endpoint.
type PortfolioResponse struct {
	Data struct {
		Portfolio *entity.Portfolio `json:"portfolio"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// Handler serves the admin endpoints.
type Handler struct {
	portfolio port.PortfolioService
	logger    *zap.Logger
}

// NewHandler creates the admin handler.
func NewHandler(portfolio port.PortfolioService, logger *zap.Logger) *Handler {
	return &Handler{portfolio: portfolio, logger: logger.Named("API")}
}

// GetPortfolioHandler aggregates one user's portfolio on demand. Meant for
// operators debugging a report, not for end users.
func (h *Handler) GetPortfolioHandler(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	portfolio, err := h.portfolio.Aggregate(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("admin aggregation failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}

	var resp PortfolioResponse
	resp.Data.Portfolio = portfolio
	switch {
	case portfolio.Empty():
		resp.StatusMessage = "No portfolio data found. The user may have no linked exchanges."
	case len(portfolio.Errors) > 0:
		resp.StatusMessage = "Portfolio retrieved. Some accounts encountered errors."
	default:
		resp.StatusMessage = "Portfolio retrieved successfully."
	}
	c.JSON(http.StatusOK, resp)
}

// SetupRouter configures the gin engine for the admin server.
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolios/:user_id", handler.GetPortfolioHandler)
	}

	return router
}

// NewServer wraps the router in an http.Server with the configured timeouts.
func NewServer(cfg config.ServerConfig, handler *Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Port,
		Handler:      SetupRouter(handler),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
}
