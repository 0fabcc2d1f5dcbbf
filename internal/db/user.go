package db

import "time"

// User 保存登录账号，注册后不再修改。
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash []byte `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time
	Profile      *Profile `gorm:"foreignKey:UserID;references:ID"`
}

// TableName 固定表名为 users。
func (User) TableName() string {
	return "users"
}
