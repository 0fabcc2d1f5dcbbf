package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gymbuddy/internal/db"
)

// HealthCheck 提供监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	if err := db.Ping(a.dbPath); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

// ListProviders 返回可选的模型平台。
func (a *API) ListProviders(c *gin.Context) {
	providers := []string{}
	if lister, ok := a.routines.(interface{ Providers() []string }); ok {
		providers = lister.Providers()
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}
