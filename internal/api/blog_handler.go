package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio/internal/cache"
	"portfolio/internal/database"
	"portfolio/internal/errcode"
	"portfolio/internal/repository"
)

const defaultReadTime = 5

// BlogHandler 处理博客文章。公开接口只能看到已发布文章。
type BlogHandler struct {
	posts *repository.BlogPosts
	lists *cache.Lists
}

// NewBlogHandler 构造 BlogHandler。
func NewBlogHandler(posts *repository.BlogPosts, lists *cache.Lists) *BlogHandler {
	return &BlogHandler{posts: posts, lists: lists}
}

type blogRequest struct {
	Title     string   `json:"title" binding:"required,max=255"`
	Slug      string   `json:"slug" binding:"required,max=255"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	ReadTime  int      `json:"read_time" binding:"min=0"`
	Featured  bool     `json:"featured"`
	Published bool     `json:"published"`
}

func (r blogRequest) fields() (repository.BlogFields, error) {
	slug := strings.TrimSpace(r.Slug)
	if slug == "" || strings.ContainsAny(slug, "/ ") {
		return repository.BlogFields{}, errcode.Validation("slug must be a non-empty path segment")
	}
	readTime := r.ReadTime
	if readTime == 0 {
		readTime = defaultReadTime
	}
	return repository.BlogFields{
		Title:     r.Title,
		Slug:      slug,
		Excerpt:   r.Excerpt,
		Content:   r.Content,
		Tags:      r.Tags,
		ReadTime:  readTime,
		Featured:  r.Featured,
		Published: r.Published,
	}, nil
}

// List 返回已发布文章的列表（不含正文），结果走列表缓存。
func (h *BlogHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	posts, err := cache.Fetch(h.lists, cache.KeyBlog, func() ([]database.BlogPostSummary, error) {
		return h.posts.ListPublished(ctx)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Read 按 slug 返回已发布文章，并计一次阅读。
func (h *BlogHandler) Read(c *gin.Context) {
	post, err := h.posts.ReadPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create 创建文章，slug 重复时返回 400。
func (h *BlogHandler) Create(c *gin.Context) {
	fields, err := h.bind(c)
	if err != nil {
		respondError(c, err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	h.lists.Invalidate(cache.KeyBlog)
	c.JSON(http.StatusCreated, post)
}

// Update 整体覆盖文章字段。
func (h *BlogHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	fields, err := h.bind(c)
	if err != nil {
		respondError(c, err)
		return
	}

	post, err := h.posts.Update(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	h.lists.Invalidate(cache.KeyBlog)
	c.JSON(http.StatusOK, post)
}

// Delete 删除文章。
func (h *BlogHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.lists.Invalidate(cache.KeyBlog)
	message(c, http.StatusOK, "Blog post deleted successfully")
}

func (h *BlogHandler) bind(c *gin.Context) (repository.BlogFields, error) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return repository.BlogFields{}, bindError(err)
	}
	return req.fields()
}
