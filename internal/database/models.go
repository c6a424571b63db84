package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AboutSectionID 是 About 单例记录的固定主键。
// 通过固定主键而不是 "取第一条" 约束该表最多只有一行。
const AboutSectionID uint = 1

// AdminUser 表示可以登录后台的管理员账号。
type AdminUser struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string `gorm:"size:255"`
	Name         string `gorm:"size:128"`
}

// AboutSection 表示站点 "关于我" 单例内容。
// SocialLinks 以 JSONB 存储 []content.SocialLink。
type AboutSection struct {
	gorm.Model
	Name              string         `gorm:"size:255"`
	Headline          string         `gorm:"size:255"`
	ShortSummary      string         `gorm:"type:text"`
	LongDescription   string         `gorm:"type:text"`
	Location          string         `gorm:"size:255"`
	YearsOfExperience int
	ProfilePhotoURL   string         `gorm:"size:512"`
	ResumeFileURL     string         `gorm:"size:512"`
	SocialLinks       datatypes.JSON `gorm:"type:jsonb"`
}

// SkillCategory 表示一个技能分类，内嵌技能以 JSONB 存储 []content.Skill。
type SkillCategory struct {
	gorm.Model
	Name   string         `gorm:"uniqueIndex;size:128"`
	Order  int            `gorm:"column:sort_order"`
	Skills datatypes.JSON `gorm:"type:jsonb"`
}

// Project 表示作品集中的一个项目。
// TechStack 存储 []string，Detail 存储可选的 content.ProjectDetail。
type Project struct {
	gorm.Model
	Title             string `gorm:"size:255"`
	Slug              string `gorm:"uniqueIndex;size:255"`
	ShortDescription  string `gorm:"type:text"`
	TechStack         datatypes.JSON `gorm:"type:jsonb"`
	Role              string `gorm:"size:255"`
	ProjectType       string `gorm:"size:32"`
	StartDate         time.Time
	EndDate           *time.Time
	IsOngoing         bool
	ThumbnailImageURL string `gorm:"size:512"`
	LiveURL           string `gorm:"size:512"`
	GithubURL         string `gorm:"size:512"`
	IsFeatured        bool
	Order             int            `gorm:"column:sort_order"`
	Detail            datatypes.JSON `gorm:"type:jsonb"`
}

// ExperienceEntry 表示一段工作经历。
// DescriptionBullets 与 TechUsed 均存储 []string。
type ExperienceEntry struct {
	gorm.Model
	CompanyName        string `gorm:"size:255"`
	RoleTitle          string `gorm:"size:255"`
	EmploymentType     string `gorm:"size:32"`
	Location           string `gorm:"size:255"`
	StartDate          time.Time
	EndDate            *time.Time
	IsCurrent          bool
	DescriptionBullets datatypes.JSON `gorm:"type:jsonb"`
	TechUsed           datatypes.JSON `gorm:"type:jsonb"`
	Order              int            `gorm:"column:sort_order"`
}
