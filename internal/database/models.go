package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username       string                `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash   string                `gorm:"size:255;not null"`
	Resumes        []Resume              `gorm:"constraint:OnDelete:CASCADE"`
	Customizations []ResumeCustomization `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume 表示一次成功上传并抽取的简历。
// 同一用户的“最新简历”按 ID 最大者确定。
type Resume struct {
	gorm.Model
	Filename      string         `gorm:"size:255"`
	ObjectKey     string         `gorm:"size:512"` // 原始文件在对象存储中的位置
	ExtractedData datatypes.JSON `gorm:"type:jsonb"`
	UserID        uint           `gorm:"index;not null"`

	Customizations []ResumeCustomization `gorm:"constraint:OnDelete:CASCADE"`
}

// ResumeCustomization 表示针对某个职位描述生成的定制版本，创建后不再修改。
type ResumeCustomization struct {
	gorm.Model
	JobPostText    string         `gorm:"type:text"`
	CustomizedData datatypes.JSON `gorm:"type:jsonb"`
	ResumeID       uint           `gorm:"index;not null"`
	UserID         uint           `gorm:"index;not null"`
}

// Models 返回需要迁移的全部模型。
func Models() []any {
	return []any{&User{}, &Resume{}, &ResumeCustomization{}}
}
