package handler

import (
	"net/http"

	"persona-auth/internal/auth"
	"persona-auth/internal/auth/persona"
	"persona-auth/internal/logger"

	"github.com/gin-gonic/gin"
)

// ginPipeline writes an authentication outcome as a JSON response.
type ginPipeline struct {
	c *gin.Context
}

func (p *ginPipeline) Success(user any, info auth.Info) {
	body := gin.H{
		"status": "authenticated",
		"user":   user,
	}
	if info != nil {
		body["info"] = info
	}
	p.c.JSON(http.StatusOK, body)
}

func (p *ginPipeline) Fail(info auth.Info, status int) {
	if status == 0 {
		status = http.StatusUnauthorized
	}
	body := gin.H{
		"error": "authentication failed",
	}
	if info != nil {
		body["info"] = info
	}
	p.c.JSON(status, body)
}

func (p *ginPipeline) Error(err error) {
	status := persona.StatusForError(err)

	fields := map[string]any{
		"error": err.Error(),
		"kind":  persona.KindOf(err).String(),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("authentication error", fields)
	} else {
		logger.Warn("authentication rejected", fields)
	}

	p.c.JSON(status, gin.H{
		"error": persona.PublicMessage(err),
	})
}
