package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
// 模型平台的 API Key 不在此处缓存，生成计划时直接从进程环境读取。
type AppConfig struct {
	ListenAddr       string
	Port             string
	DatabasePath     string
	SessionSecret    string
	GinMode          string
	DefaultProvider  string
	OpenAIBaseURL    string
	AnthropicBaseURL string
	SeedUserName     string
	SeedUserPassword string
}

// Load 从 .env 与环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] failed to load .env: %v", err)
	}

	port := envOrDefault("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:       listenAddr,
		Port:             port,
		DatabasePath:     envOrDefault("DATABASE_PATH", "gym_buddy.db"),
		SessionSecret:    envOrDefault("SESSION_SECRET", "gym-buddy-dev-secret"),
		GinMode:          envOrDefault("GIN_MODE", "release"),
		DefaultProvider:  envOrDefault("DEFAULT_MODEL_PROVIDER", "Anthropic"),
		OpenAIBaseURL:    envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AnthropicBaseURL: envOrDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
		SeedUserName:     strings.TrimSpace(os.Getenv("SEED_USER_NAME")),
		SeedUserPassword: strings.TrimSpace(os.Getenv("SEED_USER_PASSWORD")),
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
