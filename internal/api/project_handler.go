package api

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"portfolio/internal/api/middleware"
	"portfolio/internal/cache"
	"portfolio/internal/database"
	"portfolio/internal/errcode"
	"portfolio/internal/metrics"
	"portfolio/internal/repository"
	"portfolio/internal/upload"
)

// multipartOverhead 是图片之外留给文本字段与分段头的余量。
const multipartOverhead = 1 << 20

// ProjectHandler 处理项目的增删改查，创建与更新可附带一张图片。
type ProjectHandler struct {
	projects *repository.Projects
	uploads  *upload.Handler
	lists    *cache.Lists
}

// NewProjectHandler 构造 ProjectHandler。
func NewProjectHandler(projects *repository.Projects, uploads *upload.Handler, lists *cache.Lists) *ProjectHandler {
	return &ProjectHandler{projects: projects, uploads: uploads, lists: lists}
}

// projectForm 同时支持 multipart 表单与 JSON，tech_stack 以逗号分隔。
type projectForm struct {
	Title           string `form:"title" json:"title" binding:"required,max=255"`
	Description     string `form:"description" json:"description"`
	LongDescription string `form:"long_description" json:"long_description"`
	TechStack       string `form:"tech_stack" json:"tech_stack"`
	GithubURL       string `form:"github_url" json:"github_url" binding:"max=512"`
	LiveURL         string `form:"live_url" json:"live_url" binding:"max=512"`
	Featured        bool   `form:"featured" json:"featured"`
	DisplayOrder    int    `form:"display_order" json:"display_order"`
}

func (f projectForm) fields() repository.ProjectFields {
	return repository.ProjectFields{
		Title:           f.Title,
		Description:     f.Description,
		LongDescription: f.LongDescription,
		TechStack:       splitList(f.TechStack),
		GithubURL:       f.GithubURL,
		LiveURL:         f.LiveURL,
		Featured:        f.Featured,
		DisplayOrder:    f.DisplayOrder,
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// List 按展示顺序返回项目列表，结果走列表缓存。
func (h *ProjectHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	projects, err := cache.Fetch(h.lists, cache.KeyProjects, func() ([]database.Project, error) {
		return h.projects.List(ctx)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Get 返回单个项目。
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Create 先校验并保存图片，再写入项目；写库失败时删除已存图片。
func (h *ProjectHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	form, image, err := h.readForm(c)
	if err != nil {
		h.reject(c, err)
		return
	}

	imageURL, err := h.storeImage(ctx, image)
	if err != nil {
		h.reject(c, err)
		return
	}

	project, err := h.projects.Create(ctx, form.fields(), imageURL)
	if err != nil {
		h.discardImage(c, imageURL)
		respondError(c, err)
		return
	}

	h.lists.Invalidate(cache.KeyProjects)
	c.JSON(http.StatusCreated, project)
}

// Update 覆盖标量字段，仅在上传新图片时替换 image_url。
func (h *ProjectHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	form, image, err := h.readForm(c)
	if err != nil {
		h.reject(c, err)
		return
	}

	previous, err := h.projects.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	imageURL, err := h.storeImage(ctx, image)
	if err != nil {
		h.reject(c, err)
		return
	}

	project, err := h.projects.Update(ctx, id, form.fields(), imageURL)
	if err != nil {
		h.discardImage(c, imageURL)
		respondError(c, err)
		return
	}
	if imageURL != nil && previous.ImageURL != nil && *previous.ImageURL != *imageURL {
		h.discardImage(c, previous.ImageURL)
	}

	h.lists.Invalidate(cache.KeyProjects)
	c.JSON(http.StatusOK, project)
}

// Delete 删除项目及其图片。
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projects.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.discardImage(c, project.ImageURL)

	h.lists.Invalidate(cache.KeyProjects)
	message(c, http.StatusOK, "Project deleted successfully")
}

// readForm 绑定文本字段并取出可选的图片。
func (h *ProjectHandler) readForm(c *gin.Context) (projectForm, *multipart.FileHeader, error) {
	var form projectForm

	limit := h.uploads.MaxBytes() + multipartOverhead
	if c.Request.ContentLength > limit {
		return form, nil, errcode.New(errcode.ErrPayloadTooLarge, "File exceeds %d bytes", h.uploads.MaxBytes())
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return form, nil, errcode.New(errcode.ErrPayloadTooLarge, "File exceeds %d bytes", h.uploads.MaxBytes())
		}
		return form, nil, bindError(err)
	}

	if c.ContentType() != binding.MIMEMultipartPOSTForm || c.Request.MultipartForm == nil {
		return form, nil, nil
	}

	var image *multipart.FileHeader
	for field, files := range c.Request.MultipartForm.File {
		if field != upload.FieldName {
			return form, nil, errcode.Validation("Unexpected file field %q", field)
		}
		if len(files) > 1 {
			return form, nil, errcode.Validation("Only one image may be uploaded")
		}
		image = files[0]
	}
	if image == nil {
		return form, nil, nil
	}
	if err := h.uploads.Validate(image); err != nil {
		return form, nil, err
	}
	return form, image, nil
}

func (h *ProjectHandler) storeImage(ctx context.Context, image *multipart.FileHeader) (*string, error) {
	if image == nil {
		return nil, nil
	}
	ref, err := h.uploads.Save(ctx, image)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// discardImage 删除已存图片，失败只记日志。
func (h *ProjectHandler) discardImage(c *gin.Context, ref *string) {
	if ref == nil {
		return
	}
	if err := h.uploads.Remove(context.WithoutCancel(c.Request.Context()), *ref); err != nil {
		middleware.LoggerFromContext(c).Warn("remove image failed",
			slog.String("image_url", *ref),
			slog.Any("error", err),
		)
	}
}

func (h *ProjectHandler) reject(c *gin.Context, err error) {
	switch status := errcode.Status(err); status {
	case http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		metrics.UploadRejected(status)
	}
	respondError(c, err)
}
