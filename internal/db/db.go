package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPath 是未配置 DATABASE_PATH 时使用的数据库文件。
const DefaultPath = "gym_buddy.db"

// LogLevel 控制 Open 创建的连接所使用的 gorm 日志级别，测试中可调为 Silent。
var LogLevel = logger.Warn

// Open 打开指定路径的 SQLite 数据库。
// databasePath 为空时将回退到默认值 gym_buddy.db。
func Open(databasePath string) (*gorm.DB, error) {
	path := resolvePath(databasePath)

	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(LogLevel),
		TranslateError: true,
	})
}

// WithConn 为一次操作打开独立连接，并保证在所有返回路径上释放连接。
func WithConn(databasePath string, fn func(tx *gorm.DB) error) (err error) {
	gdb, err := Open(databasePath)
	if err != nil {
		return err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sqlDB.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(gdb)
}

// InitSchema 幂等地创建 users 与 profiles 两张表，可重复调用。
func InitSchema(databasePath string) error {
	return WithConn(databasePath, func(tx *gorm.DB) error {
		// users 必须先于 profiles 创建，外键才能引用
		return tx.AutoMigrate(&User{}, &Profile{})
	})
}

// Ping 打开一次连接并确认数据库可达。
func Ping(databasePath string) error {
	return WithConn(databasePath, func(tx *gorm.DB) error {
		sqlDB, err := tx.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
}

func resolvePath(databasePath string) string {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		return DefaultPath
	}
	return path
}

func ensureParentDir(path string) error {
	// 内存库或 URI 形式的 DSN 不对应真实目录
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
