package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portfolio/internal/database"
	"portfolio/internal/errcode"
)

const blogNotFound = "Blog post not found"

// BlogFields 是创建与更新文章时写入的字段。
type BlogFields struct {
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Tags      []string
	ReadTime  int
	Featured  bool
	Published bool
}

// BlogPosts 管理博客文章，公开读取只返回已发布文章。
type BlogPosts struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBlogPosts 构造文章仓储。
func NewBlogPosts(db *gorm.DB) *BlogPosts {
	return &BlogPosts{db: db, now: time.Now}
}

// ListPublished 按发布时间倒序返回已发布文章的精简字段。
func (r *BlogPosts) ListPublished(ctx context.Context) ([]database.BlogPostSummary, error) {
	posts := []database.BlogPostSummary{}
	err := r.db.WithContext(ctx).
		Model(&database.BlogPost{}).
		Select("id", "title", "slug", "excerpt", "tags", "published_at", "read_time", "featured").
		Where("published = ?", true).
		Order("published_at DESC").
		Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ReadPublished 先原子地累加阅读数，再返回已发布文章。
func (r *BlogPosts) ReadPublished(ctx context.Context, slug string) (*database.BlogPost, error) {
	db := r.db.WithContext(ctx)

	tx := db.Model(&database.BlogPost{}).
		Where("slug = ? AND published = ?", slug, true).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if err := affected(tx, blogNotFound); err != nil {
		return nil, err
	}

	var post database.BlogPost
	if err := db.Where("slug = ? AND published = ?", slug, true).First(&post).Error; err != nil {
		return nil, translate(err, blogNotFound)
	}
	return &post, nil
}

// Get 按 id 读取文章，不区分发布状态。
func (r *BlogPosts) Get(ctx context.Context, id uint) (*database.BlogPost, error) {
	var post database.BlogPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err, blogNotFound)
	}
	return &post, nil
}

// Create 新增文章，发布状态下写入 published_at。
func (r *BlogPosts) Create(ctx context.Context, f BlogFields) (*database.BlogPost, error) {
	post := database.BlogPost{
		Title:     f.Title,
		Slug:      f.Slug,
		Excerpt:   f.Excerpt,
		Content:   f.Content,
		Tags:      datatypes.JSONSlice[string](nonNil(f.Tags)),
		ReadTime:  f.ReadTime,
		Featured:  f.Featured,
		Published: f.Published,
	}
	if f.Published {
		now := r.now()
		post.PublishedAt = &now
	}

	if err := r.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, slugConflict(translate(err, blogNotFound))
	}
	return &post, nil
}

// Update 覆盖文章；published_at 只在首次发布时写入。
func (r *BlogPosts) Update(ctx context.Context, id uint, f BlogFields) (*database.BlogPost, error) {
	var post database.BlogPost
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return translate(err, blogNotFound)
		}

		updates := map[string]any{
			"title":     f.Title,
			"slug":      f.Slug,
			"excerpt":   f.Excerpt,
			"content":   f.Content,
			"tags":      datatypes.JSONSlice[string](nonNil(f.Tags)),
			"read_time": f.ReadTime,
			"featured":  f.Featured,
			"published": f.Published,
		}
		if f.Published && post.PublishedAt == nil {
			updates["published_at"] = r.now()
		}

		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return slugConflict(translate(err, blogNotFound))
		}
		return translate(tx.First(&post, id).Error, blogNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete 删除文章。
func (r *BlogPosts) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&database.BlogPost{}, id), blogNotFound)
}

func slugConflict(err error) error {
	if errors.Is(err, errcode.ErrConflict) {
		return errcode.Conflict("Slug already exists")
	}
	return err
}
