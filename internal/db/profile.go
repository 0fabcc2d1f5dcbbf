package db

import "time"

// 训练水平的常用取值，仅作为约定，数据库不做约束。
const (
	LevelBeginner = "Beginner"
	LevelRegular  = "Regular"
	LevelExpert   = "Expert"
)

// Profile 记录用户的身体数据与训练经历，每个用户至多一条。
// Weight 单位为 kg，Height 单位为 cm
// Tenure 为自由文本，例如 "2 years"

type Profile struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	Age       int
	Weight    float64
	Height    float64
	Level     string
	Tenure    string
	UpdatedAt time.Time
}

// TableName 固定表名为 profiles。
func (Profile) TableName() string {
	return "profiles"
}
