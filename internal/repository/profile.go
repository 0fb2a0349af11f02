package repository

import (
	"context"

	"gorm.io/gorm"

	"portfolio/internal/database"
)

const profileNotFound = "Profile not found"

// ProfileFields 是可编辑的个人资料字段，URL 指针为 nil 时保留原值。
type ProfileFields struct {
	Name      string
	Title     string
	Bio       string
	Email     string
	Github    string
	Linkedin  string
	Twitter   string
	ResumeURL *string
	ImageURL  *string
}

// Profiles 读写唯一的个人资料记录。
type Profiles struct {
	db *gorm.DB
}

// NewProfiles 构造个人资料仓储。
func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

// Get 读取个人资料。
func (r *Profiles) Get(ctx context.Context) (*database.Profile, error) {
	var p database.Profile
	if err := r.db.WithContext(ctx).First(&p, database.ProfileID).Error; err != nil {
		return nil, translate(err, profileNotFound)
	}
	return &p, nil
}

// Update 覆盖个人资料并返回更新后的记录。
func (r *Profiles) Update(ctx context.Context, f ProfileFields) (*database.Profile, error) {
	updates := map[string]any{
		"name":     f.Name,
		"title":    f.Title,
		"bio":      f.Bio,
		"email":    f.Email,
		"github":   f.Github,
		"linkedin": f.Linkedin,
		"twitter":  f.Twitter,
	}
	if f.ResumeURL != nil {
		updates["resume_url"] = *f.ResumeURL
	}
	if f.ImageURL != nil {
		updates["image_url"] = *f.ImageURL
	}

	tx := r.db.WithContext(ctx).
		Model(&database.Profile{}).
		Where("id = ?", database.ProfileID).
		Updates(updates)
	if err := affected(tx, profileNotFound); err != nil {
		return nil, err
	}
	return r.Get(ctx)
}
