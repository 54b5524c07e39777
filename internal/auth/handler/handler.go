package handler

import (
	"net/http"

	"persona-auth/internal/auth/provider"
	"persona-auth/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	strategies *provider.Registry
}

func NewHandler(registry *provider.Registry) *Handler {
	return &Handler{
		strategies: registry,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/auth/:strategy", h.authenticate)
}

func (h *Handler) authenticate(c *gin.Context) {
	strategyName := c.Param("strategy")

	s, err := h.strategies.Get(strategyName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown authentication strategy",
		})
		return
	}

	outcome := s.Authenticate(c.Request)

	logger.Info("authentication attempt", map[string]any{
		"strategy": strategyName,
		"outcome":  outcome.Kind.String(),
		"ip":       c.ClientIP(),
	})

	outcome.Report(&ginPipeline{c: c})
}
