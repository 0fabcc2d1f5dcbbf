package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gymbuddy/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dummyPasswordHash 用于未知用户名时执行一次等价的 bcrypt 比较，
// 避免通过响应耗时区分"用户不存在"与"密码错误"。
var dummyPasswordHash = mustHashPassword("gym-buddy-timing-equalizer")

// ProfileInput 描述保存训练档案时的全部字段，不做范围或枚举校验。
type ProfileInput struct {
	Age    int
	Weight float64
	Height float64
	Level  string
	Tenure string
}

// AccountService 负责账号注册、登录校验与训练档案的读写。
// 每个操作都会单独打开并关闭一次数据库连接。
type AccountService struct {
	path string
}

// NewAccountService 构造绑定到指定数据库文件的 AccountService。
func NewAccountService(databasePath string) *AccountService {
	return &AccountService{path: databasePath}
}

// InitSchema 确保 users 与 profiles 表存在。
func (s *AccountService) InitSchema() error {
	if err := db.InitSchema(s.path); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Register 使用随机盐的 bcrypt 哈希保存新用户。
// 用户名已存在时返回 false 而不是错误。
func (s *AccountService) Register(username, password string) (bool, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	created := false
	err = db.WithConn(s.path, func(tx *gorm.DB) error {
		if err := tx.Create(&db.User{Username: username, PasswordHash: hashed}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("register user: %w", err)
	}

	if !created {
		log.Printf("[account] register rejected, username already taken")
	}
	return created, nil
}

// Authenticate 校验用户名与密码，成功时返回用户 ID。
// 用户不存在与密码错误都返回 ok=false，调用方无法区分两者。
func (s *AccountService) Authenticate(username, password string) (uint, bool, error) {
	var user db.User
	found := true
	err := db.WithConn(s.path, func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("find user: %w", err)
	}

	if !found {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return 0, false, nil
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return 0, false, nil
	}

	return user.ID, true, nil
}

// SaveProfile 以 upsert 方式写入训练档案，已有记录会被整体覆盖。
func (s *AccountService) SaveProfile(userID uint, input ProfileInput) error {
	profile := db.Profile{
		UserID: userID,
		Age:    input.Age,
		Weight: input.Weight,
		Height: input.Height,
		Level:  input.Level,
		Tenure: input.Tenure,
	}

	err := db.WithConn(s.path, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&profile).Error
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GetProfile 返回指定用户的训练档案，尚未保存过时返回 nil。
func (s *AccountService) GetProfile(userID uint) (*db.Profile, error) {
	var profile db.Profile
	found := true
	err := db.WithConn(s.path, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &profile, nil
}

// EnsureUser 存在性检查：若用户名与密码均非空且账号不存在，则创建该账号。
func (s *AccountService) EnsureUser(username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	created, err := s.Register(trimmedUser, trimmedPassword)
	if err != nil {
		return err
	}
	if created {
		log.Printf("[account] seeded user %q", trimmedUser)
	}
	return nil
}

func mustHashPassword(password string) []byte {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("hash dummy password: %v", err))
	}
	return hashed
}
