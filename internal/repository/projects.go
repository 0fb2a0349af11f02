package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portfolio/internal/database"
)

const projectNotFound = "Project not found"

// ProjectFields 是创建与更新时写入的标量字段。
type ProjectFields struct {
	Title           string
	Description     string
	LongDescription string
	TechStack       []string
	GithubURL       string
	LiveURL         string
	Featured        bool
	DisplayOrder    int
}

// Projects 管理项目表。
type Projects struct {
	db *gorm.DB
}

// NewProjects 构造项目仓储。
func NewProjects(db *gorm.DB) *Projects {
	return &Projects{db: db}
}

// List 按 display_order 升序返回项目，同序时新建的在前。
func (r *Projects) List(ctx context.Context) ([]database.Project, error) {
	projects := []database.Project{}
	err := r.db.WithContext(ctx).
		Order("display_order ASC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Get 按 id 读取项目。
func (r *Projects) Get(ctx context.Context, id uint) (*database.Project, error) {
	var p database.Project
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, projectNotFound)
	}
	return &p, nil
}

// Create 新增项目；imageURL 为 nil 时 image_url 为空。
func (r *Projects) Create(ctx context.Context, f ProjectFields, imageURL *string) (*database.Project, error) {
	p := database.Project{
		Title:           f.Title,
		Description:     f.Description,
		LongDescription: f.LongDescription,
		TechStack:       datatypes.JSONSlice[string](nonNil(f.TechStack)),
		ImageURL:        imageURL,
		GithubURL:       f.GithubURL,
		LiveURL:         f.LiveURL,
		Featured:        f.Featured,
		DisplayOrder:    f.DisplayOrder,
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, translate(err, projectNotFound)
	}
	return &p, nil
}

// Update 覆盖标量字段，imageURL 非 nil 时才替换 image_url。
func (r *Projects) Update(ctx context.Context, id uint, f ProjectFields, imageURL *string) (*database.Project, error) {
	updates := map[string]any{
		"title":            f.Title,
		"description":      f.Description,
		"long_description": f.LongDescription,
		"tech_stack":       datatypes.JSONSlice[string](nonNil(f.TechStack)),
		"github_url":       f.GithubURL,
		"live_url":         f.LiveURL,
		"featured":         f.Featured,
		"display_order":    f.DisplayOrder,
	}
	if imageURL != nil {
		updates["image_url"] = *imageURL
	}

	tx := r.db.WithContext(ctx).
		Model(&database.Project{}).
		Where("id = ?", id).
		Updates(updates)
	if err := affected(tx, projectNotFound); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete 删除项目并返回删除前的记录。
func (r *Projects) Delete(ctx context.Context, id uint) (*database.Project, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Delete(&database.Project{}, id)
	if err := affected(tx, projectNotFound); err != nil {
		return nil, err
	}
	return p, nil
}
