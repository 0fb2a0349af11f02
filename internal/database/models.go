package database

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileID 是唯一个人资料记录的固定主键。
const ProfileID uint = 1

// Profile 表示站点主人的个人信息，全表仅一行。
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Title     string    `gorm:"size:255" json:"title"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Email     string    `gorm:"size:255" json:"email"`
	Github    string    `gorm:"size:255" json:"github"`
	Linkedin  string    `gorm:"size:255" json:"linkedin"`
	Twitter   string    `gorm:"size:255" json:"twitter"`
	ResumeURL *string   `gorm:"size:512" json:"resume_url"`
	ImageURL  *string   `gorm:"size:512" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定个人资料表名。
func (Profile) TableName() string { return "profile" }

// Project 表示作品集中的一个项目。
type Project struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	Title           string                      `gorm:"size:255;not null" json:"title"`
	Description     string                      `gorm:"type:text" json:"description"`
	LongDescription string                      `gorm:"type:text" json:"long_description"`
	TechStack       datatypes.JSONSlice[string] `json:"tech_stack"`
	ImageURL        *string                     `gorm:"size:512" json:"image_url"`
	GithubURL       string                      `gorm:"size:512" json:"github_url"`
	LiveURL         string                      `gorm:"size:512" json:"live_url"`
	Featured        bool                        `gorm:"not null;default:false" json:"featured"`
	DisplayOrder    int                         `gorm:"not null;default:0;index" json:"display_order"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// Skill 表示一项技能，category 仅为自由文本分组。
type Skill struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Category     string    `gorm:"size:128;index" json:"category"`
	Proficiency  int       `gorm:"not null;default:0" json:"proficiency"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BlogPost 表示一篇博客文章，slug 全局唯一。
type BlogPost struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Slug        string                      `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Excerpt     string                      `gorm:"type:text" json:"excerpt"`
	Content     string                      `gorm:"type:text" json:"content"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Published   bool                        `gorm:"not null;default:false;index" json:"published"`
	PublishedAt *time.Time                  `json:"published_at"`
	ReadTime    int                         `gorm:"not null;default:5" json:"read_time"`
	Featured    bool                        `gorm:"not null;default:false" json:"featured"`
	ViewCount   int64                       `gorm:"not null;default:0" json:"view_count"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// BlogPostSummary 是公开列表返回的精简文章字段。
type BlogPostSummary struct {
	ID          uint                        `json:"id"`
	Title       string                      `json:"title"`
	Slug        string                      `json:"slug"`
	Excerpt     string                      `json:"excerpt"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	PublishedAt *time.Time                  `json:"published_at"`
	ReadTime    int                         `json:"read_time"`
	Featured    bool                        `json:"featured"`
}

// ContactMessage 表示访客提交的留言，只追加。
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Subject   string    `gorm:"size:255" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// User 表示可登录后台的账号。
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// All 列出 Migrate 处理的全部模型。
func All() []any {
	return []any{&Profile{}, &Project{}, &Skill{}, &BlogPost{}, &ContactMessage{}, &User{}}
}
