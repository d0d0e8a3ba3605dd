package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck 提供给前端与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"message":           "News automation API is running",
		"gemini_configured": a.geminiConfigured,
	})
}
