package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/gymbuddy/internal/config"
	"github.com/gymbuddy/internal/router"
	"github.com/gymbuddy/internal/service"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	accounts := service.NewAccountService(cfg.DatabasePath)
	if err := accounts.InitSchema(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	if err := accounts.EnsureUser(cfg.SeedUserName, cfg.SeedUserPassword); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	routines := service.NewDefaultRoutineGenerator(cfg.DefaultProvider, cfg.OpenAIBaseURL, cfg.AnthropicBaseURL)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg.SessionSecret, cfg.DatabasePath, routines)
	log.Printf("gym buddy listening on %s (providers: %v)", cfg.ListenAddr, routines.Providers())
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
