package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gymbuddy/internal/config"
	"github.com/gymbuddy/internal/service"
)

func main() {
	cfg := config.Load()

	var dbPath, username, password string
	flag.StringVar(&dbPath, "db", cfg.DatabasePath, "sqlite db path")
	flag.StringVar(&username, "user", cfg.SeedUserName, "optional username to create")
	flag.StringVar(&password, "password", cfg.SeedUserPassword, "password for -user")
	flag.Parse()

	accounts := service.NewAccountService(dbPath)
	if err := accounts.InitSchema(); err != nil {
		fmt.Fprintf(os.Stderr, "init db: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("数据库已就绪: %s\n", dbPath)

	if username == "" {
		return
	}
	if err := accounts.EnsureUser(username, password); err != nil {
		fmt.Fprintf(os.Stderr, "ensure user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("用户已就绪: %s\n", username)
}
