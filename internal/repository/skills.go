package repository

import (
	"context"

	"gorm.io/gorm"

	"portfolio/internal/database"
)

const skillNotFound = "Skill not found"

// SkillFields 是创建与更新技能时写入的字段。
type SkillFields struct {
	Name         string
	Category     string
	Proficiency  int
	DisplayOrder int
}

// Skills 管理技能表。
type Skills struct {
	db *gorm.DB
}

// NewSkills 构造技能仓储。
func NewSkills(db *gorm.DB) *Skills {
	return &Skills{db: db}
}

// List 按分类、再按 display_order 排序。
func (r *Skills) List(ctx context.Context) ([]database.Skill, error) {
	skills := []database.Skill{}
	err := r.db.WithContext(ctx).
		Order("category ASC").
		Order("display_order ASC").
		Order("id ASC").
		Find(&skills).Error
	if err != nil {
		return nil, err
	}
	return skills, nil
}

// Create 新增技能。
func (r *Skills) Create(ctx context.Context, f SkillFields) (*database.Skill, error) {
	s := database.Skill{
		Name:         f.Name,
		Category:     f.Category,
		Proficiency:  f.Proficiency,
		DisplayOrder: f.DisplayOrder,
	}
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, translate(err, skillNotFound)
	}
	return &s, nil
}

// Update 覆盖技能字段。
func (r *Skills) Update(ctx context.Context, id uint, f SkillFields) (*database.Skill, error) {
	tx := r.db.WithContext(ctx).
		Model(&database.Skill{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":          f.Name,
			"category":      f.Category,
			"proficiency":   f.Proficiency,
			"display_order": f.DisplayOrder,
		})
	if err := affected(tx, skillNotFound); err != nil {
		return nil, err
	}

	var s database.Skill
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err, skillNotFound)
	}
	return &s, nil
}

// Delete 删除技能。
func (r *Skills) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&database.Skill{}, id), skillNotFound)
}
