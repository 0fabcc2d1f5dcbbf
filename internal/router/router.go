package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gymbuddy/internal/handler"
	"github.com/gymbuddy/internal/service"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(sessionSecret, databasePath string, routines *service.RoutineGenerator) *gin.Engine {
	return setupRouterWithAPI(sessionSecret, handler.NewAPI(databasePath, routines))
}

func setupRouterWithAPI(sessionSecret string, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 7 * 24 * 60 * 60})
	r.Use(sessions.Sessions("gym_buddy_session", store))

	r.GET("/healthz", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", api.Register)
			auth.POST("/login", api.Login)
			auth.POST("/logout", api.Logout)
		}

		apiGroup.GET("/providers", api.ListProviders)

		// 需要登录的接口
		protected := apiGroup.Group("")
		protected.Use(handler.AuthRequired())
		{
			protected.GET("/profile", api.GetProfile)
			protected.PUT("/profile", api.SaveProfile)
			protected.POST("/routine/generate", api.GenerateRoutine)
		}
	}

	return r
}
