package main

import (
	"fmt"
	"log"

	"github.com/gymbuddy/internal/config"
	"github.com/gymbuddy/internal/db"
	"github.com/gymbuddy/internal/service"
)

type demoAccount struct {
	Username string
	Password string
	Profile  service.ProfileInput
}

var demoAccounts = []demoAccount{
	{
		Username: "newbie",
		Password: "newbie123",
		Profile:  service.ProfileInput{Age: 22, Weight: 68, Height: 175, Level: db.LevelBeginner, Tenure: "2 weeks"},
	},
	{
		Username: "regular",
		Password: "regular123",
		Profile:  service.ProfileInput{Age: 35, Weight: 81.5, Height: 182, Level: db.LevelRegular, Tenure: "1 year"},
	},
	{
		Username: "veteran",
		Password: "veteran123",
		Profile:  service.ProfileInput{Age: 44, Weight: 90, Height: 178, Level: db.LevelExpert, Tenure: "15 years"},
	},
}

// 演示数据生成器
func main() {
	cfg := config.Load()

	accounts := service.NewAccountService(cfg.DatabasePath)
	if err := accounts.InitSchema(); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")
	created, err := seedDemoAccounts(accounts)
	if err != nil {
		log.Fatal("生成演示数据失败:", err)
	}
	fmt.Printf("演示数据生成完成！新建用户 %d 个\n", created)
	for _, account := range demoAccounts {
		fmt.Printf("用户: %s (密码: %s, 水平: %s)\n", account.Username, account.Password, account.Profile.Level)
	}
}

// seedDemoAccounts 创建演示账号并写入档案，已存在的账号只刷新档案。
func seedDemoAccounts(accounts *service.AccountService) (int, error) {
	created := 0
	for _, account := range demoAccounts {
		ok, err := accounts.Register(account.Username, account.Password)
		if err != nil {
			return created, fmt.Errorf("register %s: %w", account.Username, err)
		}
		if ok {
			created++
		}

		userID, found, err := accounts.Authenticate(account.Username, account.Password)
		if err != nil {
			return created, fmt.Errorf("authenticate %s: %w", account.Username, err)
		}
		if !found {
			fmt.Printf("跳过 %s：账号已存在且密码不同\n", account.Username)
			continue
		}

		if err := accounts.SaveProfile(userID, account.Profile); err != nil {
			return created, fmt.Errorf("save profile for %s: %w", account.Username, err)
		}
	}
	return created, nil
}
